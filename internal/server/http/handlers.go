package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Pradeepp09/SITE-server/internal/common"
	"github.com/Pradeepp09/SITE-server/internal/server/models"
	"github.com/Pradeepp09/SITE-server/internal/server/services"
)

// deviceTokenHeader carries the optional token binding an upload to its
// account. Without it the upload resolves to an arbitrary provisioned
// account, so a bare camera can push frames without credentials.
const deviceTokenHeader = "X-Device-Token"

// writeError maps an error's kind to an HTTP status and serializes the
// stable {kind, message} shape. Causes stay in the logs, never on the wire.
func writeError(c *gin.Context, err error) {
	kind := common.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case common.KindValidation, common.KindEmptyPayload, common.KindAlreadyExists:
		status = http.StatusBadRequest
	case common.KindUnauthorized:
		status = http.StatusUnauthorized
	case common.KindAccountNotFound, common.KindKeyNotFound, common.KindRecordNotFound, common.KindNoMediaFound:
		status = http.StatusNotFound
	case common.KindDuplicateObject:
		status = http.StatusConflict
	case common.KindStorageUnavailable, common.KindFetchFailed:
		status = http.StatusBadGateway
	}

	message := "internal error"
	var ae *common.AppError
	if errors.As(err, &ae) {
		message = ae.Message
	}

	c.JSON(status, gin.H{"success": false, "kind": kind, "message": message})
}

type signupRequest struct {
	ProductNumber   int64  `json:"productnumber"`
	Name            string `json:"name"`
	Mobile          string `json:"mobile"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	AESKey          string `json:"aesKey"`
	Agree           bool   `json:"agree"`
}

func (s *Server) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, common.Wrap(common.KindValidation, "malformed signup payload", err))
		return
	}

	_, err := s.accounts.Register(c.Request.Context(), services.RegisterRequest{
		ProductNumber:   req.ProductNumber,
		Name:            req.Name,
		Mobile:          req.Mobile,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		AESKey:          req.AESKey,
		Agree:           req.Agree,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "account registered"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, common.Wrap(common.KindValidation, "malformed login payload", err))
		return
	}

	token, err := s.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

// upload is the camera path: the request body is the raw JPEG frame.
// Frames over maxUploadBytes are rejected whole; storing a truncated
// prefix would ledger a corrupted image as a success.
func (s *Server) upload(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(c, common.New(common.KindValidation, "frame exceeds the upload limit"))
			return
		}
		writeError(c, common.Wrap(common.KindValidation, "failed to read frame body", err))
		return
	}

	ctx := c.Request.Context()

	var account *models.Account
	if token := c.GetHeader(deviceTokenHeader); token != "" {
		account, err = s.accounts.ResolveDeviceToken(ctx, token)
	} else {
		account, err = s.accounts.LookupAny(ctx)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	locator, err := s.media.Ingest(ctx, payload, account)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "cipherLocator": locator})
}

type ownerRequest struct {
	Email string `json:"email"`
}

type retrievedImage struct {
	ObjectName   string      `json:"objectName"`
	PlainLocator string      `json:"plainLocator,omitempty"`
	Error        common.Kind `json:"error,omitempty"`
}

func (s *Server) decryptImages(c *gin.Context) {
	var req ownerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		writeError(c, common.New(common.KindValidation, "email is required"))
		return
	}

	items, err := s.media.Retrieve(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, err)
		return
	}

	images := make([]retrievedImage, 0, len(items))
	for _, item := range items {
		img := retrievedImage{ObjectName: item.ObjectName, PlainLocator: item.PlainLocator}
		if item.Err != nil {
			img.Error = common.KindOf(item.Err)
		}
		images = append(images, img)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "images": images})
}

type decryptedImage struct {
	Filename     string    `json:"filename"`
	PlainLocator string    `json:"plainLocator"`
	Timestamp    time.Time `json:"timestamp"`
}

func (s *Server) getDecryptedImages(c *gin.Context) {
	var req ownerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		writeError(c, common.New(common.KindValidation, "email is required"))
		return
	}

	items, err := s.media.ListDecrypted(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, err)
		return
	}

	images := make([]decryptedImage, 0, len(items))
	for _, item := range items {
		images = append(images, decryptedImage{
			Filename:     item.ObjectName,
			PlainLocator: item.PlainLocator,
			Timestamp:    item.CapturedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "images": images})
}
