package handler

import (
	"net/http"

	"anoa.com/plantspeak/internal/i18n"
	"anoa.com/plantspeak/internal/modules/user/dto"
	"anoa.com/plantspeak/internal/modules/user/service"
	"anoa.com/plantspeak/internal/session"
	"anoa.com/plantspeak/pkg/response"
	"anoa.com/plantspeak/pkg/validator"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var input dto.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err, session.From(c).Language)})
		return
	}
	input.ClientIP = c.ClientIP()

	res, err := h.userService.Register(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseMessage(c, http.StatusCreated, i18n.MsgRegistered, res)
}

func (h *UserHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err, session.From(c).Language)})
		return
	}

	res, err := h.userService.Login(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseMessage(c, http.StatusOK, i18n.MsgLoggedIn, res)
}

func (h *UserHandler) GetCurrentProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err, session.From(c).Language)})
		return
	}

	profile, err := h.userService.UpdateProfile(c.Request.Context(), userID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseMessage(c, http.StatusOK, i18n.MsgProfileSave, profile)
}

// Session reports who is logged in and which view the client should show.
func (h *UserHandler) Session(c *gin.Context) {
	sess := session.From(c)
	body := gin.H{
		"authenticated": sess.IsAuthenticated(),
		"view":          sess.LandingView(),
		"language":      sess.Language.String(),
	}
	if sess.IsAuthenticated() {
		body["user_id"] = *sess.UserID
		body["username"] = sess.Username
	}
	c.JSON(http.StatusOK, body)
}
