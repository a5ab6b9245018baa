package handlers

import (
	"net/http"

	"kidala/services"
	"kidala/utils"

	"github.com/gin-gonic/gin"
)

type ObjectIDRequest struct {
	ObjectID string `json:"objectid"`
}

func Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "No file part")
		return
	}
	if header.Filename == "" {
		utils.Error(c, http.StatusBadRequest, "No selected file")
		return
	}

	file, err := header.Open()
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()

	in := services.UploadInput{
		Tag:         c.PostForm("tag"),
		Description: c.PostForm("description"),
		Private:     c.PostForm("private") == "true",
	}

	out, err := getServices().File.Upload(c.Request.Context(), caller(c), file, header, in)
	if respondServiceError(c, err) {
		return
	}

	respondUpload(c, out)
}

func UploadAd(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "No file part")
		return
	}
	if header.Filename == "" {
		utils.Error(c, http.StatusBadRequest, "No selected file")
		return
	}

	file, err := header.Open()
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()

	in := services.UploadAdInput{
		PhoneNumber: c.PostForm("phoneNumber"),
		Email:       c.PostForm("email"),
		Description: c.PostForm("description"),
	}

	out, err := getServices().File.UploadAd(c.Request.Context(), caller(c), file, header, in)
	if respondServiceError(c, err) {
		return
	}

	respondUpload(c, out)
}

func respondUpload(c *gin.Context, out services.UploadOutput) {
	if !out.Created {
		utils.Success(c, gin.H{
			"msg":  "file exists",
			"url":  out.URL,
			"hash": out.Hash,
			"file": out.File,
		})
		return
	}

	body := gin.H{
		"msg":  "success",
		"url":  out.URL,
		"hash": out.Hash,
		"file": out.File,
	}
	if out.Tag != nil {
		body["tag"] = out.Tag
	}
	if out.AccessToken != "" {
		body["access_token"] = out.AccessToken
	}
	utils.Created(c, body)
}

func MakePrivate(c *gin.Context) {
	var req ObjectIDRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ObjectID == "" {
		utils.Error(c, http.StatusBadRequest, "no objectid")
		return
	}

	nowPrivate, err := getServices().File.MakePrivate(c.Request.Context(), caller(c), req.ObjectID)
	if respondServiceError(c, err) {
		return
	}

	if nowPrivate {
		utils.Success(c, gin.H{"msg": "file privated"})
		return
	}
	utils.Success(c, gin.H{"msg": "file is now public"})
}

func DeleteFile(c *gin.Context) {
	var req ObjectIDRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ObjectID == "" {
		utils.Error(c, http.StatusBadRequest, "no objectid")
		return
	}

	if err := getServices().File.Delete(c.Request.Context(), caller(c), req.ObjectID); respondServiceError(c, err) {
		return
	}

	utils.Success(c, gin.H{"msg": "file removed"})
}

func GetAllFiles(c *gin.Context) {
	files, err := getServices().File.ListFiles(c.Request.Context())
	if respondServiceError(c, err) {
		return
	}
	c.JSON(http.StatusOK, files)
}

func GetAllTags(c *gin.Context) {
	tags, err := getServices().File.ListTags(c.Request.Context())
	if respondServiceError(c, err) {
		return
	}
	c.JSON(http.StatusOK, tags)
}

// DownloadRedirect resolves a bare content hash to the blob's public
// location.
func DownloadRedirect(c *gin.Context) {
	hash := c.Param("hash")

	_, location, err := getServices().File.ResolveDownload(c.Request.Context(), hash)
	if respondServiceError(c, err) {
		return
	}

	c.Redirect(http.StatusFound, location)
}

// ServeBlob streams the stored bytes with the detected content type.
func ServeBlob(c *gin.Context) {
	out, err := getServices().File.GetBlob(c.Request.Context(), c.Param("hash"))
	if respondServiceError(c, err) {
		return
	}

	c.Header("Content-Type", out.Mime)
	c.File(out.AbsPath)
}

func ServeThumbnail(c *gin.Context) {
	path, err := getServices().File.GetThumbnail(c.Request.Context(), c.Param("hash"))
	if respondServiceError(c, err) {
		return
	}

	c.Header("Content-Type", "image/jpeg")
	c.File(path)
}
