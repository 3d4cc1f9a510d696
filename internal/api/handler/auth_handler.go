package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/standup-backend/internal/api/gate"
	"github.com/d60-Lab/standup-backend/pkg/response"
)

// Register 注册账号
// @Summary 注册账号
// @Tags 账号
// @Accept json
// @Produce json
// @Param request body map[string]string true "user_email / user_pass / user_fname / user_lname"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/auth/user/register [post]
func (h *Handler) Register(c *gin.Context) {
	args := gate.FromContext(c)
	email, _ := args.Optional("user_email")
	password, _ := args.Optional("user_pass")
	fname, _ := args.Optional("user_fname")
	lname, _ := args.Optional("user_lname")

	account, err := h.authSvc.Register(c.Request.Context(), email, password, fname, lname)
	if err != nil {
		response.FailErr(c, err)
		return
	}
	response.Success(c, gin.H{
		"email": account.Email,
		"fname": account.FirstName,
		"lname": account.LastName,
	}, "Account created")
}

// Login 登录并签发令牌
// @Summary 登录
// @Tags 账号
// @Accept json
// @Produce json
// @Param request body map[string]string true "user_email / user_pass"
// @Success 200 {object} response.Response
// @Router /api/auth/user/login [post]
func (h *Handler) Login(c *gin.Context) {
	args := gate.FromContext(c)
	email, _ := args.Optional("user_email")
	password, _ := args.Optional("user_pass")

	token, err := h.authSvc.Authenticate(c.Request.Context(), email, password)
	if err != nil {
		response.FailErr(c, err)
		return
	}
	response.Success(c, gin.H{"email": email, "token": token}, "User authenticated")
}

// GetSettings 读取账号设置
// @Summary 读取账号设置
// @Tags 账号
// @Produce json
// @Param X-USER-EMAIL header string true "请求者邮箱"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/auth/user/settings/get [get]
func (h *Handler) GetSettings(c *gin.Context) {
	account, err := h.authSvc.Settings(c.Request.Context(), gate.RequesterEmail(c))
	if err != nil {
		response.FailErr(c, err)
		return
	}
	response.Success(c, gin.H{"user": account}, "")
}

// SetName 设置账号姓名
// @Summary 设置账号姓名
// @Tags 账号
// @Accept json
// @Produce json
// @Param X-USER-EMAIL header string true "请求者邮箱"
// @Param request body map[string]string true "first_name / last_name"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/auth/user/settings/set_name [post]
func (h *Handler) SetName(c *gin.Context) {
	args := gate.FromContext(c)
	firstName, err := args.String("first_name")
	if err != nil {
		response.FailErr(c, err)
		return
	}
	lastName, err := args.String("last_name")
	if err != nil {
		response.FailErr(c, err)
		return
	}

	account, err := h.authSvc.SetName(c.Request.Context(), gate.RequesterEmail(c), firstName, lastName)
	if err != nil {
		response.FailErr(c, err)
		return
	}
	response.Success(c, gin.H{"user": account}, "")
}
