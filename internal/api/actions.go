package api

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// formID parses a numeric id form field. A missing field parses to 0 so
// the core can classify it as BadInput; a malformed one is rejected
// here.
func formID(c *gin.Context, field string) (int64, bool) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// formFile opens the uploaded file for a field, returning a nil reader
// when no usable file was attached
func formFile(c *gin.Context, field string) (multipart.File, string, error) {
	header, err := c.FormFile(field)
	if err != nil || header.Filename == "" {
		return nil, "", nil
	}
	f, err := header.Open()
	if err != nil {
		return nil, "", err
	}
	return f, header.Filename, nil
}

// updateLikes handles POST /likes/ with operation like|unlike
func (r *Router) updateLikes(c *gin.Context) {
	actor := logname(c)
	op := strings.TrimSpace(c.PostForm("operation"))
	postID, ok := formID(c, "postid")
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad postid"})
		return
	}

	var err error
	switch op {
	case "like":
		err = r.svc.Like(c.Request.Context(), actor, postID)
	case "unlike":
		err = r.svc.Unlike(c.Request.Context(), actor, postID)
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown operation"})
		return
	}
	if err != nil {
		r.abortError(c, err)
		return
	}
	c.Redirect(http.StatusFound, redirectTarget(c, "/"))
}

// updateComments handles POST /comments/ with operation create|delete
func (r *Router) updateComments(c *gin.Context) {
	actor := logname(c)
	op := strings.TrimSpace(c.PostForm("operation"))

	switch op {
	case "create":
		postID, ok := formID(c, "postid")
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad postid"})
			return
		}
		if err := r.svc.CreateComment(c.Request.Context(), actor, postID, c.PostForm("text")); err != nil {
			r.abortError(c, err)
			return
		}
	case "delete":
		commentID, ok := formID(c, "commentid")
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad commentid"})
			return
		}
		if err := r.svc.DeleteComment(c.Request.Context(), actor, commentID); err != nil {
			r.abortError(c, err)
			return
		}
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown operation"})
		return
	}
	c.Redirect(http.StatusFound, redirectTarget(c, "/"))
}

// updatePosts handles POST /posts/ with operation create|delete
func (r *Router) updatePosts(c *gin.Context) {
	actor := logname(c)
	op := strings.TrimSpace(c.PostForm("operation"))
	target := redirectTarget(c, "/users/"+actor+"/")

	switch op {
	case "create":
		file, name, err := formFile(c, "file")
		if err != nil {
			r.abortError(c, err)
			return
		}
		if file != nil {
			defer file.Close()
		}
		if _, err := r.svc.CreatePost(c.Request.Context(), actor, file, name); err != nil {
			r.abortError(c, err)
			return
		}
	case "delete":
		postID, ok := formID(c, "postid")
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad postid"})
			return
		}
		if err := r.svc.DeletePost(c.Request.Context(), actor, postID); err != nil {
			r.abortError(c, err)
			return
		}
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown operation"})
		return
	}
	c.Redirect(http.StatusFound, target)
}

// updateFollowing handles POST /following/ with operation follow|unfollow
func (r *Router) updateFollowing(c *gin.Context) {
	actor := logname(c)
	op := strings.TrimSpace(c.PostForm("operation"))
	target := strings.TrimSpace(c.PostForm("username"))

	var err error
	switch op {
	case "follow":
		err = r.svc.Follow(c.Request.Context(), actor, target)
	case "unfollow":
		err = r.svc.Unfollow(c.Request.Context(), actor, target)
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown operation"})
		return
	}
	if err != nil {
		r.abortError(c, err)
		return
	}
	c.Redirect(http.StatusFound, redirectTarget(c, "/"))
}
