// Package memstore is an in-memory store with the same contract as the gorm
// repositories: unique constraints, cascading post deletes, preloaded
// relations and (nil, nil) for missing rows.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/beerbuddy/beerbuddy/internal/models"
	"github.com/beerbuddy/beerbuddy/internal/repository"
)

var errForeignKey = errors.New("foreign key violation")

type DB struct {
	mu       sync.RWMutex
	seq      uint
	clock    time.Time
	fail     error
	users    map[uint]models.User
	posts    map[uint]models.Post
	likes    map[uint]models.Like
	comments map[uint]models.Comment
	follows  map[uint]models.Follow
}

func New() *DB {
	return &DB{
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:    make(map[uint]models.User),
		posts:    make(map[uint]models.Post),
		likes:    make(map[uint]models.Like),
		comments: make(map[uint]models.Comment),
		follows:  make(map[uint]models.Follow),
	}
}

// FailWith makes every subsequent call return err until it is called with nil.
func (db *DB) FailWith(err error) {
	db.mu.Lock()
	db.fail = err
	db.mu.Unlock()
}

func (db *DB) Users() *UserStore       { return &UserStore{db: db} }
func (db *DB) Posts() *PostStore       { return &PostStore{db: db} }
func (db *DB) Likes() *LikeStore       { return &LikeStore{db: db} }
func (db *DB) Comments() *CommentStore { return &CommentStore{db: db} }
func (db *DB) Follows() *FollowStore   { return &FollowStore{db: db} }

// nextID hands out ids from one sequence shared by all tables, starting at 1.
func (db *DB) nextID() uint {
	db.seq++
	return db.seq
}

// now advances a millisecond per call so creation order is total.
func (db *DB) now() time.Time {
	db.clock = db.clock.Add(time.Millisecond)
	return db.clock
}

func (db *DB) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.fail
}

type UserStore struct{ db *DB }

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check(ctx); err != nil {
		return err
	}

	for _, u := range s.db.users {
		if u.Email == user.Email {
			return fmt.Errorf("failed to create user: %w", repository.ErrDuplicate)
		}
	}

	now := s.db.now()
	user.ID = s.db.nextID()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.db.users[user.ID] = *user
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id uint) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}

	u, ok := s.db.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}

	for _, u := range s.db.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (s *UserStore) Update(ctx context.Context, id uint, fields map[string]interface{}) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}

	u, ok := s.db.users[id]
	if !ok {
		return nil, nil
	}

	for column, value := range fields {
		switch column {
		case "name":
			u.Name = stringPtr(value)
		case "nickname":
			u.Nickname = stringPtr(value)
		case "bio":
			u.Bio = stringPtr(value)
		case "profile_picture":
			u.ProfilePicture = stringPtr(value)
		case "password":
			if p := stringPtr(value); p != nil {
				u.Password = *p
			}
		default:
			return nil, fmt.Errorf("failed to update user: unknown column %q", column)
		}
	}
	if len(fields) > 0 {
		u.UpdatedAt = s.db.now()
	}
	s.db.users[id] = u
	return &u, nil
}

func (s *UserStore) List(ctx context.Context, offset, limit int) ([]*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}

	all := make([]*models.User, 0, len(s.db.users))
	for _, u := range s.db.users {
		u := u
		all = append(all, &u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if offset >= len(all) {
		return []*models.User{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func stringPtr(v interface{}) *string {
	switch s := v.(type) {
	case *string:
		if s == nil {
			return nil
		}
		c := *s
		return &c
	case string:
		return &s
	default:
		return nil
	}
}

type PostStore struct{ db *DB }

func (s *PostStore) Create(ctx context.Context, post *models.Post) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check(ctx); err != nil {
		return err
	}

	author, ok := s.db.users[post.AuthorID]
	if !ok {
		return fmt.Errorf("failed to create post: %w", errForeignKey)
	}

	now := s.db.now()
	post.ID = s.db.nextID()
	post.CreatedAt = now
	post.UpdatedAt = now
	post.Author = models.User{}
	s.db.posts[post.ID] = *post
	post.Author = author
	return nil
}

func (s *PostStore) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}

	p, ok := s.db.posts[id]
	if !ok {
		return nil, nil
	}
	p.Author = s.db.users[p.AuthorID]
	return &p, nil
}

func (s *PostStore) Delete(ctx context.Context, id uint) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check(ctx); err != nil {
		return err
	}
	s.db.deletePost(id)
	return nil
}

func (s *PostStore) DeleteByAuthor(ctx context.Context, authorID uint) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check(ctx); err != nil {
		return 0, err
	}

	var n int64
	for id, p := range s.db.posts {
		if p.AuthorID == authorID {
			s.db.deletePost(id)
			n++
		}
	}
	return n, nil
}

// deletePost cascades to likes and comments. Caller holds the write lock.
func (db *DB) deletePost(id uint) {
	delete(db.posts, id)
	for lid, l := range db.likes {
		if l.PostID == id {
			delete(db.likes, lid)
		}
	}
	for cid, c := range db.comments {
		if c.PostID == id {
			delete(db.comments, cid)
		}
	}
}

func (s *PostStore) ListPage(ctx context.Context, f repository.PostFilter) ([]*models.Post, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}

	var authors map[uint]bool
	if f.AuthorIDs != nil {
		authors = make(map[uint]bool, len(f.AuthorIDs))
		for _, id := range f.AuthorIDs {
			authors[id] = true
		}
	}

	out := make([]*models.Post, 0)
	for _, p := range s.db.posts {
		if f.Cursor != nil && p.ID >= *f.Cursor {
			continue
		}
		if authors != nil && !authors[p.AuthorID] {
			continue
		}
		p := p
		p.Author = s.db.users[p.AuthorID]
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	if f.Limit >= 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *PostStore) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return 0, err
	}

	var n int64
	for _, p := range s.db.posts {
		if p.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

func (s *PostStore) SumBeersByAuthor(ctx context.Context, authorID uint) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return 0, err
	}

	var sum int64
	for _, p := range s.db.posts {
		if p.AuthorID == authorID {
			sum += int64(p.BeersCount)
		}
	}
	return sum, nil
}

type LikeStore struct{ db *DB }

func (s *LikeStore) Create(ctx context.Context, like *models.Like) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check(ctx); err != nil {
		return err
	}

	if _, ok := s.db.posts[like.PostID]; !ok {
		return fmt.Errorf("failed to create like: %w", errForeignKey)
	}
	for _, l := range s.db.likes {
		if l.UserID == like.UserID && l.PostID == like.PostID {
			return fmt.Errorf("failed to create like: %w", repository.ErrDuplicate)
		}
	}

	like.ID = s.db.nextID()
	like.CreatedAt = s.db.now()
	s.db.likes[like.ID] = *like
	return nil
}

func (s *LikeStore) Delete(ctx context.Context, id uint) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check(ctx); err != nil {
		return err
	}
	delete(s.db.likes, id)
	return nil
}

func (s *LikeStore) Get(ctx context.Context, userID, postID uint) (*models.Like, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}

	for _, l := range s.db.likes {
		if l.UserID == userID && l.PostID == postID {
			l := l
			return &l, nil
		}
	}
	return nil, nil
}

func (s *LikeStore) CountByPostIDs(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}

	wanted := toSet(postIDs)
	counts := make(map[uint]int64, len(postIDs))
	for _, l := range s.db.likes {
		if wanted[l.PostID] {
			counts[l.PostID]++
		}
	}
	return counts, nil
}

func (s *LikeStore) LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}

	wanted := toSet(postIDs)
	liked := make(map[uint]bool)
	if userID == 0 {
		return liked, nil
	}
	for _, l := range s.db.likes {
		if l.UserID == userID && wanted[l.PostID] {
			liked[l.PostID] = true
		}
	}
	return liked, nil
}

type CommentStore struct{ db *DB }

func (s *CommentStore) Create(ctx context.Context, comment *models.Comment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check(ctx); err != nil {
		return err
	}

	if _, ok := s.db.posts[comment.PostID]; !ok {
		return fmt.Errorf("failed to create comment: %w", errForeignKey)
	}
	author, ok := s.db.users[comment.UserID]
	if !ok {
		return fmt.Errorf("failed to create comment: %w", errForeignKey)
	}

	now := s.db.now()
	comment.ID = s.db.nextID()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	comment.User = models.User{}
	s.db.comments[comment.ID] = *comment
	comment.User = author
	return nil
}

func (s *CommentStore) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}

	c, ok := s.db.comments[id]
	if !ok {
		return nil, nil
	}
	c.User = s.db.users[c.UserID]
	return &c, nil
}

func (s *CommentStore) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}

	out := make([]*models.Comment, 0)
	for _, c := range s.db.comments {
		if c.PostID != postID {
			continue
		}
		c := c
		c.User = s.db.users[c.UserID]
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *CommentStore) Delete(ctx context.Context, id uint) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check(ctx); err != nil {
		return err
	}
	delete(s.db.comments, id)
	return nil
}

type FollowStore struct{ db *DB }

func (s *FollowStore) Create(ctx context.Context, follow *models.Follow) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check(ctx); err != nil {
		return err
	}

	if _, ok := s.db.users[follow.FollowerID]; !ok {
		return fmt.Errorf("failed to create follow: %w", errForeignKey)
	}
	if _, ok := s.db.users[follow.FollowingID]; !ok {
		return fmt.Errorf("failed to create follow: %w", errForeignKey)
	}
	for _, f := range s.db.follows {
		if f.FollowerID == follow.FollowerID && f.FollowingID == follow.FollowingID {
			return fmt.Errorf("failed to create follow: %w", repository.ErrDuplicate)
		}
	}

	follow.ID = s.db.nextID()
	follow.CreatedAt = s.db.now()
	s.db.follows[follow.ID] = *follow
	return nil
}

func (s *FollowStore) Delete(ctx context.Context, id uint) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check(ctx); err != nil {
		return err
	}
	delete(s.db.follows, id)
	return nil
}

func (s *FollowStore) Get(ctx context.Context, followerID, followingID uint) (*models.Follow, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}

	for _, f := range s.db.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			f := f
			return &f, nil
		}
	}
	return nil, nil
}

func (s *FollowStore) FollowingIDs(ctx context.Context, followerID uint) ([]uint, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}

	ids := make([]uint, 0)
	for _, f := range s.db.follows {
		if f.FollowerID == followerID {
			ids = append(ids, f.FollowingID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *FollowStore) ListByFollower(ctx context.Context, userID uint) ([]*models.Follow, error) {
	return s.list(ctx, func(f models.Follow) bool { return f.FollowerID == userID })
}

func (s *FollowStore) ListByFollowing(ctx context.Context, userID uint) ([]*models.Follow, error) {
	return s.list(ctx, func(f models.Follow) bool { return f.FollowingID == userID })
}

func (s *FollowStore) list(ctx context.Context, match func(models.Follow) bool) ([]*models.Follow, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}

	out := make([]*models.Follow, 0)
	for _, f := range s.db.follows {
		if !match(f) {
			continue
		}
		f := f
		f.Follower = s.db.users[f.FollowerID]
		f.Following = s.db.users[f.FollowingID]
		out = append(out, &f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *FollowStore) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return s.count(ctx, func(f models.Follow) bool { return f.FollowingID == userID })
}

func (s *FollowStore) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return s.count(ctx, func(f models.Follow) bool { return f.FollowerID == userID })
}

func (s *FollowStore) count(ctx context.Context, match func(models.Follow) bool) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return 0, err
	}

	var n int64
	for _, f := range s.db.follows {
		if match(f) {
			n++
		}
	}
	return n, nil
}

func toSet(ids []uint) map[uint]bool {
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
