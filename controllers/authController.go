package controllers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/Kariqs/goutam-store/accounts"
	"github.com/Kariqs/goutam-store/models"
	"github.com/Kariqs/goutam-store/store"
	"github.com/gin-gonic/gin"
)

const (
	// Standard response messages
	msgInvalidInput          = "invalid input"
	msgUserAlreadyExists     = "user already exists"
	msgInvalidCredentials    = "invalid email or password"
	msgAccountDisabled       = "This account has been disabled."
	msgInternalServerError   = "Internal server error"
	msgUserCreated           = "Account created successfully."
	msgLoggedIn              = "Logged in successfully."
	msgLoggedOut             = "Logged out successfully."
	msgResetLinkSent         = "Check your email for a password reset link."
	msgUserNotFound          = "user with this email does not exist"
	msgResetTokenError       = "There was an error trying to generate password reset link. Try again later."
	msgInvalidResetLink      = "Invalid or expired reset link"
	msgUnableToResetPassword = "unable to reset password"
	msgPasswordReset         = "Password reset successful"
	msgNotFound              = "not found"
	msgAlreadyExists         = "already exists"
)

func sendJSONResponse(ctx *gin.Context, status int, data gin.H) {
	ctx.JSON(status, data)
}

func sendErrorResponse(ctx *gin.Context, status int, message string) {
	sendJSONResponse(ctx, status, gin.H{"message": message})
}

// Signup creates the account and signs the session in. The first account
// ever created is the store admin.
func (c *Controller) Signup(ctx *gin.Context) {
	var signUpData models.SignupData
	if !bindJSON(ctx, &signUpData) {
		return
	}

	user, err := c.accounts.Signup(ctx.Request.Context(), signUpData)
	if errors.Is(err, accounts.ErrEmailTaken) || errors.Is(err, store.ErrDuplicate) {
		sendErrorResponse(ctx, http.StatusBadRequest, msgUserAlreadyExists)
		return
	}
	if err != nil {
		c.handleStoreError(ctx, err, "Failed to create account")
		return
	}

	token, err := c.accounts.IssueToken(user)
	if err != nil {
		c.log.Error("token generation failed", "user_id", user.ID, "error", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	sess := c.session(ctx)
	sess.Login(user.ID, user.Role)
	if !c.saveSession(ctx, sess) {
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"message": msgUserCreated, "token": token, "user": user})
}

// Login handles user authentication
func (c *Controller) Login(ctx *gin.Context) {
	var loginData models.LoginData
	if err := ctx.ShouldBindJSON(&loginData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	user, token, err := c.accounts.Login(ctx.Request.Context(), loginData)
	switch {
	case errors.Is(err, accounts.ErrInvalidCredentials):
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidCredentials)
		return
	case errors.Is(err, accounts.ErrAccountDisabled):
		sendErrorResponse(ctx, http.StatusForbidden, msgAccountDisabled)
		return
	case err != nil:
		c.log.Error("login failed", "error", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	sess := c.session(ctx)
	if sess.Authenticated && sess.UserID != user.ID {
		sess.Logout()
	}
	sess.Login(user.ID, user.Role)
	if !c.saveSession(ctx, sess) {
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgLoggedIn, "token": token, "user": user})
}

// Logout signs the session out and empties its cart. The language choice
// survives.
func (c *Controller) Logout(ctx *gin.Context) {
	sess := c.session(ctx)
	sess.Logout()
	sess.Notice = ""
	if !c.saveSession(ctx, sess) {
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgLoggedOut})
}

// SendPasswordResetLink emails a single-use reset link.
func (c *Controller) SendPasswordResetLink(ctx *gin.Context) {
	type ForgotPasswordBody struct {
		Email string `json:"email" binding:"required,email"`
	}

	var forgotPasswordData ForgotPasswordBody
	if err := ctx.ShouldBindJSON(&forgotPasswordData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	token, user, err := c.accounts.RequestPasswordReset(ctx.Request.Context(), forgotPasswordData.Email)
	if errors.Is(err, store.ErrNotFound) {
		sendErrorResponse(ctx, http.StatusBadRequest, msgUserNotFound)
		return
	}
	if err != nil {
		c.log.Error("reset token generation failed", "error", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgResetTokenError)
		return
	}

	resetURL := c.cfg.FrontendURL + "/auth/reset-password?token=" + url.QueryEscape(token)
	if err := c.mailer.SendPasswordReset(user, resetURL); err != nil {
		c.log.Error("Error sending password reset email", "user_id", user.ID, "error", err)
	} else {
		c.log.Info("Password reset email sent", "to", user.Email)
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgResetLinkSent})
}

// ResetPassword resets a user's password using a reset token
func (c *Controller) ResetPassword(ctx *gin.Context) {
	type ResetPasswordInfo struct {
		Password string `json:"password" binding:"required"`
	}

	var resetPasswordData ResetPasswordInfo
	if err := ctx.ShouldBindJSON(&resetPasswordData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	err := c.accounts.ResetPassword(ctx.Request.Context(), ctx.Param("resetToken"), resetPasswordData.Password)
	var invalid *models.ValidationError
	switch {
	case errors.As(err, &invalid):
		sendJSONResponse(ctx, http.StatusBadRequest, gin.H{"message": msgInvalidInput, "errors": invalid.Problems})
		return
	case errors.Is(err, accounts.ErrInvalidResetToken):
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidResetLink)
		return
	case err != nil:
		c.log.Error("Error resetting password", "error", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgUnableToResetPassword)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgPasswordReset})
}
