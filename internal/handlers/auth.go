package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"junkmart/web/internal/apiclient"
	"junkmart/web/internal/auth"
	"junkmart/web/internal/guard"
	"junkmart/web/internal/middleware"
	"junkmart/web/internal/models"
)

const pendingApprovalMessage = "Registration received. Your account is awaiting admin approval."

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	From     string `json:"from"`
}

// Role-specific fields are checked by the auth store.
type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"eqfield=Password"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	BusinessName    string `json:"businessName"`
}

type sessionResponse struct {
	Loading        bool               `json:"loading"`
	Authenticated  bool               `json:"authenticated"`
	User           *models.UserRecord `json:"user"`
	Dashboard      string             `json:"dashboard,omitempty"`
	TokenExpiresAt *time.Time         `json:"tokenExpiresAt,omitempty"`
}

func (h HandlerSet) Login(c *gin.Context) {
	role := models.UserRole(c.Param("role"))
	if !role.Valid() {
		h.fail(c, auth.ErrRoleNotSupported)
		return
	}
	var req loginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if !h.sessionSettled(c) {
		return
	}

	client := currentClient(c)
	user, err := client.Auth.LoginAs(c.Request.Context(), role, req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	client.Session.Login(user)

	c.JSON(http.StatusOK, gin.H{
		"user":     user,
		"redirect": redirectAfterLogin(req.From, user.Role),
	})
}

func (h HandlerSet) Signup(c *gin.Context) {
	role := models.UserRole(c.Param("role"))
	if !role.CanRegister() {
		h.fail(c, auth.ErrRoleNotSupported)
		return
	}
	var req registerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if !h.sessionSettled(c) {
		return
	}

	client := currentClient(c)
	res, err := client.Auth.RegisterAs(c.Request.Context(), role, apiclient.RegisterRequest{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Phone:           req.Phone,
		Address:         req.Address,
		BusinessName:    req.BusinessName,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	if res.Pending {
		c.JSON(http.StatusAccepted, gin.H{
			"user":     res.User,
			"pending":  true,
			"message":  pendingApprovalMessage,
			"redirect": guard.LandingPath,
		})
		return
	}

	client.Session.Login(res.User)
	c.JSON(http.StatusCreated, gin.H{
		"user":     res.User,
		"redirect": guard.DashboardFor(res.User.Role),
	})
}

func (h HandlerSet) Logout(c *gin.Context) {
	if !h.sessionSettled(c) {
		return
	}
	client := currentClient(c)
	if err := client.Session.Logout(c.Request.Context()); err != nil {
		h.log.Warn().Err(err).Str("client_id", client.ID).Msg("clear session storage failed")
	}
	c.JSON(http.StatusOK, gin.H{"redirect": guard.LandingPath})
}

func (h HandlerSet) Session(c *gin.Context) {
	state := middleware.SessionState(c, h.cfg.Client.ResolveTimeout)
	resp := sessionResponse{
		Loading:       state.Loading,
		Authenticated: state.IsAuthenticated(),
		User:          state.User,
	}
	if state.IsAuthenticated() {
		resp.Dashboard = guard.DashboardFor(state.Role())
		resp.TokenExpiresAt = h.tokenExpiry(c)
	}
	c.JSON(http.StatusOK, resp)
}

func (h HandlerSet) tokenExpiry(c *gin.Context) *time.Time {
	token, err := currentClient(c).Auth.Token(c.Request.Context())
	if err != nil || token == "" {
		return nil
	}
	info, err := auth.InspectToken(token)
	if err != nil {
		h.log.Debug().Err(err).Msg("token is not a readable jwt")
		return nil
	}
	return info.ExpiresAt
}

// sessionSettled makes sure the initial session resolution finished, so it
// cannot overwrite the outcome of a login, sign-up or logout afterwards.
func (h HandlerSet) sessionSettled(c *gin.Context) bool {
	if middleware.SessionState(c, h.cfg.Client.ResolveTimeout).Loading {
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Session is still loading"})
		return false
	}
	return true
}

// redirectAfterLogin returns the page the user was sent away from, if it is
// a local path, or the dashboard of their role.
func redirectAfterLogin(from string, role models.UserRole) string {
	if strings.HasPrefix(from, "/") && !strings.HasPrefix(from, "//") && !strings.Contains(from, "\\") {
		return from
	}
	return guard.DashboardFor(role)
}
