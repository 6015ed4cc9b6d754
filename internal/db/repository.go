package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/snapfeed/snapfeed/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository. Passing a transaction handle
// scopes every operation to that transaction.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UserRepository provides user-related database operations
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// UpdateProfile updates fullname, email and optionally the avatar filename
func (r *UserRepository) UpdateProfile(ctx context.Context, username, fullname, email, filename string) error {
	updates := map[string]interface{}{
		"fullname": fullname,
		"email":    email,
	}
	if filename != "" {
		updates["filename"] = filename
	}
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", username).
		Updates(updates).Error
}

// UpdatePassword replaces the stored credential for a user
func (r *UserRepository) UpdatePassword(ctx context.Context, username, stored string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", username).
		Update("password", stored).Error
}

// Delete removes a user row; dependent rows cascade at the store level
func (r *UserRepository) Delete(ctx context.Context, username string) error {
	return r.db.WithContext(ctx).Where("username = ?", username).Delete(&models.User{}).Error
}

// ListNotFollowed returns users the viewer does not follow yet,
// excluding the viewer, ordered by username
func (r *UserRepository) ListNotFollowed(ctx context.Context, viewer string) ([]*models.User, error) {
	var users []*models.User
	sub := r.db.Model(&models.Follow{}).Select("username2").Where("username1 = ?", viewer)
	if err := r.db.WithContext(ctx).
		Where("username != ?", viewer).
		Where("username NOT IN (?)", sub).
		Order("username").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// Delete removes a post row; its likes and comments cascade
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Post{}, id).Error
}

// ListByOwner returns a user's posts, newest first
func (r *PostRepository) ListByOwner(ctx context.Context, owner string) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("postid DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// FilenamesByOwner returns the stored filenames of all posts owned by a user
func (r *PostRepository) FilenamesByOwner(ctx context.Context, owner string) ([]string, error) {
	var filenames []string
	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("owner = ?", owner).
		Pluck("filename", &filenames).Error; err != nil {
		return nil, err
	}
	return filenames, nil
}

// CountByOwner returns the number of posts owned by a user
func (r *PostRepository) CountByOwner(ctx context.Context, owner string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("owner = ?", owner).Count(&count).Error
	return count, err
}

// FeedPost is a post joined with its owner and like counts, shaped for
// the feed and single-post views
type FeedPost struct {
	PostID        int64     `gorm:"column:postid" json:"postid"`
	Filename      string    `gorm:"column:filename" json:"img_url"`
	Owner         string    `gorm:"column:owner" json:"owner"`
	OwnerFilename string    `gorm:"column:owner_filename" json:"owner_img_url"`
	Created       time.Time `gorm:"column:created" json:"created"`
	Likes         int64     `gorm:"column:likes" json:"likes"`
	ViewerLiked   int64     `gorm:"column:viewer_liked" json:"user_liked"`
}

const feedSelect = `
SELECT p.postid, p.filename, p.owner, u.filename AS owner_filename,
       p.created,
       (SELECT COUNT(*) FROM likes WHERE postid = p.postid) AS likes,
       (SELECT COUNT(*) FROM likes WHERE postid = p.postid AND owner = ?) AS viewer_liked
FROM posts p
JOIN users u ON p.owner = u.username
`

// Feed returns the viewer's own posts plus posts by users they follow,
// newest first
func (r *PostRepository) Feed(ctx context.Context, viewer string) ([]*FeedPost, error) {
	var posts []*FeedPost
	query := feedSelect + `
WHERE p.owner = ? OR p.owner IN (
    SELECT username2 FROM following WHERE username1 = ?
)
ORDER BY p.postid DESC`
	if err := r.db.WithContext(ctx).Raw(query, viewer, viewer, viewer).Scan(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// FeedPostByID returns a single post in feed shape, or nil if absent
func (r *PostRepository) FeedPostByID(ctx context.Context, viewer string, id int64) (*FeedPost, error) {
	var posts []*FeedPost
	query := feedSelect + `WHERE p.postid = ?`
	if err := r.db.WithContext(ctx).Raw(query, viewer, id).Scan(&posts).Error; err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return posts[0], nil
}

// CommentRepository provides comment-related database operations
type CommentRepository struct {
	*Repository
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(repo *Repository) *CommentRepository {
	return &CommentRepository{Repository: repo}
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// Create creates a new comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// Delete removes a comment
func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}

// ListByPost returns a post's comments in creation order
func (r *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	var comments []*models.Comment
	if err := r.db.WithContext(ctx).
		Where("postid = ?", postID).
		Order("commentid").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// LikeRepository provides like-related database operations
type LikeRepository struct {
	*Repository
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(repo *Repository) *LikeRepository {
	return &LikeRepository{Repository: repo}
}

// Get retrieves a like by its composite key, nil if absent
func (r *LikeRepository) Get(ctx context.Context, owner string, postID int64) (*models.Like, error) {
	var like models.Like
	if err := r.db.WithContext(ctx).
		Where("owner = ? AND postid = ?", owner, postID).
		First(&like).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &like, nil
}

// Create creates a new like
func (r *LikeRepository) Create(ctx context.Context, like *models.Like) error {
	return r.db.WithContext(ctx).Create(like).Error
}

// Delete removes a like by its composite key
func (r *LikeRepository) Delete(ctx context.Context, owner string, postID int64) error {
	return r.db.WithContext(ctx).
		Where("owner = ? AND postid = ?", owner, postID).
		Delete(&models.Like{}).Error
}

// FollowRepository provides follow-edge database operations
type FollowRepository struct {
	*Repository
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(repo *Repository) *FollowRepository {
	return &FollowRepository{Repository: repo}
}

// Get retrieves a follow edge, nil if absent
func (r *FollowRepository) Get(ctx context.Context, follower, followed string) (*models.Follow, error) {
	var follow models.Follow
	if err := r.db.WithContext(ctx).
		Where("username1 = ? AND username2 = ?", follower, followed).
		First(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &follow, nil
}

// Create creates a new follow edge
func (r *FollowRepository) Create(ctx context.Context, follow *models.Follow) error {
	return r.db.WithContext(ctx).Create(follow).Error
}

// Delete removes a follow edge
func (r *FollowRepository) Delete(ctx context.Context, follower, followed string) error {
	return r.db.WithContext(ctx).
		Where("username1 = ? AND username2 = ?", follower, followed).
		Delete(&models.Follow{}).Error
}

// CountFollowers returns how many users follow the given user
func (r *FollowRepository) CountFollowers(ctx context.Context, username string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("username2 = ?", username).Count(&count).Error
	return count, err
}

// CountFollowing returns how many users the given user follows
func (r *FollowRepository) CountFollowing(ctx context.Context, username string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("username1 = ?", username).Count(&count).Error
	return count, err
}

// ListFollowers returns the users following the given user, ordered by username
func (r *FollowRepository) ListFollowers(ctx context.Context, username string) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN following f ON f.username1 = users.username").
		Where("f.username2 = ?", username).
		Order("users.username").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListFollowing returns the users the given user follows, ordered by username
func (r *FollowRepository) ListFollowing(ctx context.Context, username string) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN following f ON f.username2 = users.username").
		Where("f.username1 = ?", username).
		Order("users.username").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
