package handler

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"anoa.com/plantspeak/internal/i18n"
	"anoa.com/plantspeak/internal/modules/media"
	"anoa.com/plantspeak/internal/modules/submission/dto"
	"anoa.com/plantspeak/internal/modules/submission/service"
	"anoa.com/plantspeak/internal/session"
	"anoa.com/plantspeak/pkg/apperror"
	"anoa.com/plantspeak/pkg/response"
	"anoa.com/plantspeak/pkg/validator"
	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	submissionService service.SubmissionService
}

func NewSubmissionHandler(submissionService service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
	}
}

func (h *SubmissionHandler) Create(c *gin.Context) {
	sess := session.From(c)

	var input dto.CreateSubmissionInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err, sess.Language)})
		return
	}

	uploads, closeAll, err := formUploads(c)
	defer closeAll()
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.submissionService.Create(c.Request.Context(), sess, input, uploads)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseMessage(c, http.StatusCreated, i18n.MsgSubmitted, res)
}

// formUploads opens the optional photo, voice and notes files of the form.
func formUploads(c *gin.Context) ([]media.Upload, func(), error) {
	var files []multipart.File
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	var uploads []media.Upload
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return uploads, closeAll, nil
	}
	for _, kind := range media.Kinds {
		header, err := c.FormFile(string(kind))
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return nil, closeAll, fmt.Errorf("%w: %s: %v", apperror.ErrInvalidInput, kind, err)
		}
		f, err := header.Open()
		if err != nil {
			return nil, closeAll, fmt.Errorf("%w: %s: %v", apperror.ErrAttachment, kind, err)
		}
		files = append(files, f)
		uploads = append(uploads, media.Upload{
			Kind:     kind,
			FileName: header.Filename,
			Size:     header.Size,
			Content:  f,
		})
	}
	return uploads, closeAll, nil
}

func (h *SubmissionHandler) List(c *gin.Context) {
	sess := session.From(c)

	var filter dto.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err, sess.Language)})
		return
	}

	res, err := h.submissionService.List(c.Request.Context(), sess, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *SubmissionHandler) Search(c *gin.Context) {
	sess := session.From(c)

	var filter dto.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err, sess.Language)})
		return
	}

	res, err := h.submissionService.Search(c.Request.Context(), sess, c.Query("q"), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *SubmissionHandler) Get(c *gin.Context) {
	res, err := h.submissionService.Get(c.Request.Context(), session.From(c), c.Param("id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *SubmissionHandler) Export(c *gin.Context) {
	sess := session.From(c)

	var filter dto.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err, sess.Language)})
		return
	}

	var buf bytes.Buffer
	if err := h.submissionService.Export(c.Request.Context(), sess, filter, &buf); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="submissions.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *SubmissionHandler) Vocabulary(c *gin.Context) {
	c.JSON(http.StatusOK, h.submissionService.Vocabulary())
}

// Media serves a local attachment directly and redirects to remote ones.
func (h *SubmissionHandler) Media(c *gin.Context) {
	kind, ok := media.ParseKind(c.Param("kind"))
	if !ok {
		response.ResponseError(c, fmt.Errorf("%w: unknown attachment kind", apperror.ErrNotFound))
		return
	}

	loc, err := h.submissionService.OpenAttachment(c.Request.Context(), session.From(c), c.Param("id"), kind)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if loc.URL != "" {
		c.Redirect(http.StatusFound, loc.URL)
		return
	}
	c.File(loc.Path)
}
