package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/snapfeed/snapfeed/internal/db"
	"github.com/snapfeed/snapfeed/internal/models"
)

// showIndex handles GET /: the viewer's feed with comments inlined
func (r *Router) showIndex(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := logname(c)
	repo := r.svc.Repository()

	feed, err := db.NewPostRepository(repo).Feed(ctx, viewer)
	if err != nil {
		r.abortError(c, err)
		return
	}

	comments := db.NewCommentRepository(repo)
	posts := make([]gin.H, 0, len(feed))
	for _, post := range feed {
		list, err := comments.ListByPost(ctx, post.PostID)
		if err != nil {
			r.abortError(c, err)
			return
		}
		commentList := make([]gin.H, 0, len(list))
		for _, comment := range list {
			commentList = append(commentList, gin.H{
				"owner": comment.Owner,
				"text":  comment.Text,
			})
		}
		posts = append(posts, gin.H{
			"postid":        post.PostID,
			"owner":         post.Owner,
			"img_url":       post.Filename,
			"owner_img_url": post.OwnerFilename,
			"created":       post.Created,
			"likes":         post.Likes,
			"user_liked":    post.ViewerLiked,
			"comments":      commentList,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"logname": viewer,
		"posts":   posts,
	})
}

// showExplore handles GET /explore/: users the viewer is not following
func (r *Router) showExplore(c *gin.Context) {
	viewer := logname(c)
	users, err := db.NewUserRepository(r.svc.Repository()).
		ListNotFollowed(c.Request.Context(), viewer)
	if err != nil {
		r.abortError(c, err)
		return
	}

	notFollowing := make([]gin.H, 0, len(users))
	for _, user := range users {
		notFollowing = append(notFollowing, gin.H{
			"username":     user.Username,
			"user_img_url": user.Filename,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"logname":       viewer,
		"not_following": notFollowing,
	})
}

// showUser handles GET /users/:username/: the profile page context
func (r *Router) showUser(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := logname(c)
	username := c.Param("username")
	repo := r.svc.Repository()

	user, err := db.NewUserRepository(repo).GetByUsername(ctx, username)
	if err != nil {
		r.abortError(c, err)
		return
	}
	if user == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no such user"})
		return
	}

	posts := db.NewPostRepository(repo)
	follows := db.NewFollowRepository(repo)

	totalPosts, err := posts.CountByOwner(ctx, username)
	if err != nil {
		r.abortError(c, err)
		return
	}
	followers, err := follows.CountFollowers(ctx, username)
	if err != nil {
		r.abortError(c, err)
		return
	}
	following, err := follows.CountFollowing(ctx, username)
	if err != nil {
		r.abortError(c, err)
		return
	}
	edge, err := follows.Get(ctx, viewer, username)
	if err != nil {
		r.abortError(c, err)
		return
	}

	ownPosts, err := posts.ListByOwner(ctx, username)
	if err != nil {
		r.abortError(c, err)
		return
	}
	thumbnails := make([]gin.H, 0, len(ownPosts))
	for _, post := range ownPosts {
		thumbnails = append(thumbnails, gin.H{
			"postid":  post.PostID,
			"img_url": post.Filename,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"logname":                  viewer,
		"username":                 user.Username,
		"fullname":                 user.Fullname,
		"total_posts":              totalPosts,
		"followers":                followers,
		"following":                following,
		"logname_follows_username": edge != nil,
		"posts":                    thumbnails,
	})
}

// showFollowers handles GET /users/:username/followers/
func (r *Router) showFollowers(c *gin.Context) {
	r.showFollowList(c, true)
}

// showFollowing handles GET /users/:username/following/
func (r *Router) showFollowing(c *gin.Context) {
	r.showFollowList(c, false)
}

func (r *Router) showFollowList(c *gin.Context, followers bool) {
	ctx := c.Request.Context()
	viewer := logname(c)
	username := c.Param("username")
	repo := r.svc.Repository()

	user, err := db.NewUserRepository(repo).GetByUsername(ctx, username)
	if err != nil {
		r.abortError(c, err)
		return
	}
	if user == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no such user"})
		return
	}

	follows := db.NewFollowRepository(repo)
	var users []*models.User
	if followers {
		users, err = follows.ListFollowers(ctx, username)
	} else {
		users, err = follows.ListFollowing(ctx, username)
	}
	if err != nil {
		r.abortError(c, err)
		return
	}

	list := make([]gin.H, 0, len(users))
	for _, u := range users {
		edge, err := follows.Get(ctx, viewer, u.Username)
		if err != nil {
			r.abortError(c, err)
			return
		}
		list = append(list, gin.H{
			"username":                 u.Username,
			"user_img_url":             u.Filename,
			"logname_follows_username": edge != nil,
		})
	}

	key := "following"
	if followers {
		key = "followers"
	}
	c.JSON(http.StatusOK, gin.H{
		"logname":  viewer,
		"username": username,
		key:        list,
	})
}

// showPost handles GET /posts/:postid/: one post with its comments
func (r *Router) showPost(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := logname(c)
	postID, err := strconv.ParseInt(c.Param("postid"), 10, 64)
	if err != nil || postID <= 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no such post"})
		return
	}
	repo := r.svc.Repository()

	post, err := db.NewPostRepository(repo).FeedPostByID(ctx, viewer, postID)
	if err != nil {
		r.abortError(c, err)
		return
	}
	if post == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no such post"})
		return
	}

	list, err := db.NewCommentRepository(repo).ListByPost(ctx, postID)
	if err != nil {
		r.abortError(c, err)
		return
	}
	comments := make([]gin.H, 0, len(list))
	for _, comment := range list {
		comments = append(comments, gin.H{
			"commentid": comment.CommentID,
			"owner":     comment.Owner,
			"text":      comment.Text,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"logname":       viewer,
		"postid":        post.PostID,
		"owner":         post.Owner,
		"owner_img_url": post.OwnerFilename,
		"img_url":       post.Filename,
		"created":       post.Created,
		"likes":         post.Likes,
		"user_liked":    post.ViewerLiked,
		"comments":      comments,
	})
}

// serveUpload handles GET /uploads/:filename. Files are only served to
// authenticated users; containment is enforced by the upload store.
func (r *Router) serveUpload(c *gin.Context) {
	if logname(c) == "" {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
	path, err := r.svc.Uploads().Resolve(c.Param("filename"))
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	c.File(path)
}
