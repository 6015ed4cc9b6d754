package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/snapfeed/snapfeed/internal/db"
)

// accountsOps handles POST /accounts/. The operation field is decoded
// once here; each variant maps to exactly one core call.
func (r *Router) accountsOps(c *gin.Context) {
	op := strings.TrimSpace(c.PostForm("operation"))
	target := redirectTarget(c, "/")

	switch op {
	case "login":
		r.opLogin(c, target)
	case "create":
		r.opCreate(c, target)
	case "delete":
		r.opDelete(c, target)
	case "edit_account":
		r.opEdit(c, target)
	case "update_password":
		r.opUpdatePassword(c, target)
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown operation"})
	}
}

func (r *Router) opLogin(c *gin.Context, target string) {
	token, err := r.svc.Login(c.Request.Context(),
		strings.TrimSpace(c.PostForm("username")),
		strings.TrimSpace(c.PostForm("password")))
	if err != nil {
		r.abortError(c, err)
		return
	}
	r.setSession(c, token)
	c.Redirect(http.StatusFound, target)
}

func (r *Router) opCreate(c *gin.Context, target string) {
	file, name, err := formFile(c, "file")
	if err != nil {
		r.abortError(c, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	token, err := r.svc.CreateAccount(c.Request.Context(),
		strings.TrimSpace(c.PostForm("username")),
		strings.TrimSpace(c.PostForm("password")),
		strings.TrimSpace(c.PostForm("fullname")),
		strings.TrimSpace(c.PostForm("email")),
		file, name)
	if err != nil {
		r.abortError(c, err)
		return
	}
	r.setSession(c, token)
	c.Redirect(http.StatusFound, target)
}

func (r *Router) opDelete(c *gin.Context, target string) {
	if err := r.svc.DeleteAccount(c.Request.Context(), logname(c), r.sessionToken(c)); err != nil {
		r.abortError(c, err)
		return
	}
	r.clearSession(c)
	c.Redirect(http.StatusFound, target)
}

func (r *Router) opEdit(c *gin.Context, target string) {
	file, name, err := formFile(c, "file")
	if err != nil {
		r.abortError(c, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	if err := r.svc.EditAccount(c.Request.Context(), logname(c),
		strings.TrimSpace(c.PostForm("fullname")),
		strings.TrimSpace(c.PostForm("email")),
		file, name); err != nil {
		r.abortError(c, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}

func (r *Router) opUpdatePassword(c *gin.Context, target string) {
	if err := r.svc.UpdatePassword(c.Request.Context(), logname(c),
		strings.TrimSpace(c.PostForm("password")),
		strings.TrimSpace(c.PostForm("new_password1")),
		strings.TrimSpace(c.PostForm("new_password2"))); err != nil {
		r.abortError(c, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}

// accountsLogout handles POST /accounts/logout/
func (r *Router) accountsLogout(c *gin.Context) {
	if err := r.svc.Logout(c.Request.Context(), r.sessionToken(c)); err != nil {
		r.abortError(c, err)
		return
	}
	r.clearSession(c)
	c.Redirect(http.StatusFound, redirectTarget(c, "/accounts/login/"))
}

// accountsAuth is the am-I-logged-in probe: 200 with no content when a
// session is present, 403 otherwise
func (r *Router) accountsAuth(c *gin.Context) {
	if logname(c) == "" {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
	c.Status(http.StatusOK)
}

// accountsRedirect sends bare GET /accounts/ to the login page
func (r *Router) accountsRedirect(c *gin.Context) {
	c.Redirect(http.StatusFound, "/accounts/login/")
}

// accountsLoginPage renders the login page context
func (r *Router) accountsLoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"logname": logname(c)})
}

// accountsCreatePage renders the signup page context; a logged-in user
// is sent to the edit screen instead
func (r *Router) accountsCreatePage(c *gin.Context) {
	if logname(c) != "" {
		c.Redirect(http.StatusFound, "/accounts/edit/")
		return
	}
	c.JSON(http.StatusOK, gin.H{"logname": ""})
}

// accountsEditPage renders the edit screen context
func (r *Router) accountsEditPage(c *gin.Context) {
	actor := logname(c)
	user, err := db.NewUserRepository(r.svc.Repository()).GetByUsername(c.Request.Context(), actor)
	if err != nil {
		r.abortError(c, err)
		return
	}
	if user == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no such user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"logname":      actor,
		"fullname":     user.Fullname,
		"email":        user.Email,
		"user_img_url": user.Filename,
	})
}

// accountsPasswordPage renders the change-password screen context
func (r *Router) accountsPasswordPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"logname": logname(c)})
}

// accountsDeletePage renders the delete-confirmation screen context
func (r *Router) accountsDeletePage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"logname": logname(c)})
}
