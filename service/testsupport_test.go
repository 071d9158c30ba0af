package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"conduit/errs"
	models "conduit/model"
	"conduit/pkg/jwt"
)

// In-memory fakes implementing the repository interfaces, mirroring the
// store-boundary semantics (uniqueness mapping, idempotent edges,
// NotFound/Forbidden splits) so the services can be exercised end to end.

type followEdge struct {
	follower uuid.UUID
	followed uuid.UUID
}

type memArticle struct {
	id          uuid.UUID
	authorID    uuid.UUID
	slug        string
	title       string
	description string
	body        string
	tags        []string
	createdAt   time.Time
	updatedAt   time.Time
	seq         int
}

type memComment struct {
	id        int64
	articleID uuid.UUID
	authorID  uuid.UUID
	body      string
	createdAt time.Time
	updatedAt time.Time
}

type memStore struct {
	users         map[uuid.UUID]*models.User
	follows       map[followEdge]bool
	articles      []*memArticle
	favorites     map[uuid.UUID]map[uuid.UUID]bool // article id -> favoriting users
	comments      []*memComment
	nextCommentID int64
	nextSeq       int
	now           time.Time
}

func newMemStore(now time.Time) *memStore {
	return &memStore{
		users:         make(map[uuid.UUID]*models.User),
		follows:       make(map[followEdge]bool),
		favorites:     make(map[uuid.UUID]map[uuid.UUID]bool),
		nextCommentID: 1,
		now:           now,
	}
}

func (s *memStore) userByUsername(username string) *models.User {
	for _, u := range s.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

func (s *memStore) articleBySlug(slug string) *memArticle {
	for _, a := range s.articles {
		if a.slug == slug {
			return a
		}
	}
	return nil
}

func (s *memStore) isFollowing(follower *uuid.UUID, followed uuid.UUID) bool {
	if follower == nil {
		return false
	}
	return s.follows[followEdge{follower: *follower, followed: followed}]
}

// --- UserRepository fake ---

type memUserRepo struct {
	s *memStore
}

func (r *memUserRepo) Insert(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	for _, u := range r.s.users {
		if u.Username == username {
			return nil, errs.ErrUsernameTaken
		}
	}
	for _, u := range r.s.users {
		if u.Email == email {
			return nil, errs.ErrEmailTaken
		}
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    r.s.now,
		UpdatedAt:    r.s.now,
	}
	r.s.users[user.ID] = user
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, ok := r.s.users[userID]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, currentUserID *uuid.UUID, username string) (*models.Profile, error) {
	user := r.s.userByUsername(username)
	if user == nil {
		return nil, nil
	}
	return &models.Profile{
		Username:  user.Username,
		Bio:       user.Bio,
		Image:     user.Image,
		Following: r.s.isFollowing(currentUserID, user.ID),
	}, nil
}

func (r *memUserRepo) Update(ctx context.Context, userID uuid.UUID, input *models.UpdateUserInput) (*models.User, error) {
	user, ok := r.s.users[userID]
	if !ok {
		return nil, errs.ErrCurrentUserNotFound
	}

	if input.Username != nil {
		for id, u := range r.s.users {
			if id != userID && u.Username == *input.Username {
				return nil, errs.ErrUsernameTaken
			}
		}
		user.Username = *input.Username
	}
	if input.Email != nil {
		for id, u := range r.s.users {
			if id != userID && u.Email == *input.Email {
				return nil, errs.ErrEmailTaken
			}
		}
		user.Email = *input.Email
	}
	if input.PasswordHash != nil {
		user.PasswordHash = *input.PasswordHash
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.Image != nil {
		user.Image = input.Image
	}
	user.UpdatedAt = r.s.now

	copied := *user
	return &copied, nil
}

func (r *memUserRepo) InsertFollow(ctx context.Context, followerID uuid.UUID, username string) error {
	followee := r.s.userByUsername(username)
	if followee == nil {
		return errs.ErrProfileNotFound
	}
	if followee.ID == followerID {
		return errs.ErrForbidden
	}
	r.s.follows[followEdge{follower: followerID, followed: followee.ID}] = true
	return nil
}

func (r *memUserRepo) DeleteFollow(ctx context.Context, followerID uuid.UUID, username string) error {
	followee := r.s.userByUsername(username)
	if followee == nil {
		return errs.ErrProfileNotFound
	}
	delete(r.s.follows, followEdge{follower: followerID, followed: followee.ID})
	return nil
}

// --- ArticleRepository fake ---

type memArticleRepo struct {
	s *memStore
}

func (r *memArticleRepo) Select(ctx context.Context, currentUserID *uuid.UUID, filter models.ArticleFilter) ([]models.Article, error) {
	matched := []*memArticle{}
	for _, a := range r.s.articles {
		if filter.Slug != nil && a.slug != *filter.Slug {
			continue
		}
		if filter.Tag != nil && !contains(a.tags, *filter.Tag) {
			continue
		}
		author := r.s.users[a.authorID]
		if filter.Author != nil && author.Username != *filter.Author {
			continue
		}
		if filter.FavoritedBy != nil {
			favoriter := r.s.userByUsername(*filter.FavoritedBy)
			if favoriter == nil || !r.s.favorites[a.id][favoriter.ID] {
				continue
			}
		}
		if filter.FollowedBy != nil && !r.s.isFollowing(filter.FollowedBy, a.authorID) {
			continue
		}
		matched = append(matched, a)
	}

	// Newest first.
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq > matched[j].seq })

	limit := int64(20)
	if filter.Limit != nil {
		limit = *filter.Limit
	}
	var offset int64
	if filter.Offset != nil {
		offset = *filter.Offset
	}
	if offset > int64(len(matched)) {
		offset = int64(len(matched))
	}
	matched = matched[offset:]
	if int64(len(matched)) > limit {
		matched = matched[:limit]
	}

	result := make([]models.Article, 0, len(matched))
	for _, a := range matched {
		result = append(result, r.project(a, currentUserID))
	}
	return result, nil
}

func (r *memArticleRepo) project(a *memArticle, currentUserID *uuid.UUID) models.Article {
	author := r.s.users[a.authorID]
	favorited := currentUserID != nil && r.s.favorites[a.id][*currentUserID]
	return models.Article{
		Slug:            a.slug,
		Title:           a.title,
		Description:     a.description,
		Body:            a.body,
		TagList:         pq.StringArray(append([]string{}, a.tags...)),
		CreatedAt:       a.createdAt,
		UpdatedAt:       a.updatedAt,
		Favorited:       favorited,
		FavoritesCount:  int64(len(r.s.favorites[a.id])),
		AuthorUsername:  author.Username,
		AuthorBio:       author.Bio,
		AuthorImage:     author.Image,
		FollowingAuthor: r.s.isFollowing(currentUserID, a.authorID),
	}
}

func (r *memArticleRepo) FetchID(ctx context.Context, slug string) (uuid.UUID, error) {
	a := r.s.articleBySlug(slug)
	if a == nil {
		return uuid.Nil, errs.ErrArticleNotFound
	}
	return a.id, nil
}

func (r *memArticleRepo) Insert(ctx context.Context, authorID uuid.UUID, slug, title, description, body string, tags []string) (*models.Article, error) {
	if r.s.articleBySlug(slug) != nil {
		return nil, &errs.DuplicateSlugError{Slug: slug}
	}

	r.s.nextSeq++
	a := &memArticle{
		id:          uuid.New(),
		authorID:    authorID,
		slug:        slug,
		title:       title,
		description: description,
		body:        body,
		tags:        append([]string{}, tags...),
		createdAt:   r.s.now,
		updatedAt:   r.s.now,
		seq:         r.s.nextSeq,
	}
	r.s.articles = append(r.s.articles, a)

	projected := r.project(a, nil)
	return &projected, nil
}

func (r *memArticleRepo) Update(ctx context.Context, authorID uuid.UUID, slug string, input models.UpdateArticleInput) error {
	a := r.s.articleBySlug(slug)
	if a == nil {
		return errs.ErrArticleNotFound
	}
	if a.authorID != authorID {
		return errs.ErrForbidden
	}

	if input.Slug != nil {
		if other := r.s.articleBySlug(*input.Slug); other != nil && other != a {
			return &errs.DuplicateSlugError{Slug: *input.Slug}
		}
		a.slug = *input.Slug
	}
	if input.Title != nil {
		a.title = *input.Title
	}
	if input.Description != nil {
		a.description = *input.Description
	}
	if input.Body != nil {
		a.body = *input.Body
	}
	a.updatedAt = r.s.now
	return nil
}

func (r *memArticleRepo) Delete(ctx context.Context, authorID uuid.UUID, slug string) error {
	a := r.s.articleBySlug(slug)
	if a == nil {
		return errs.ErrArticleNotFound
	}
	if a.authorID != authorID {
		return errs.ErrForbidden
	}

	remaining := r.s.articles[:0]
	for _, other := range r.s.articles {
		if other != a {
			remaining = append(remaining, other)
		}
	}
	r.s.articles = remaining
	delete(r.s.favorites, a.id)

	comments := r.s.comments[:0]
	for _, c := range r.s.comments {
		if c.articleID != a.id {
			comments = append(comments, c)
		}
	}
	r.s.comments = comments
	return nil
}

func (r *memArticleRepo) InsertFavorite(ctx context.Context, userID uuid.UUID, slug string) error {
	a := r.s.articleBySlug(slug)
	if a == nil {
		return errs.ErrArticleNotFound
	}
	if r.s.favorites[a.id] == nil {
		r.s.favorites[a.id] = make(map[uuid.UUID]bool)
	}
	r.s.favorites[a.id][userID] = true
	return nil
}

func (r *memArticleRepo) DeleteFavorite(ctx context.Context, userID uuid.UUID, slug string) error {
	a := r.s.articleBySlug(slug)
	if a == nil {
		return errs.ErrArticleNotFound
	}
	delete(r.s.favorites[a.id], userID)
	return nil
}

// --- CommentRepository fake ---

type memCommentRepo struct {
	s *memStore
}

func (r *memCommentRepo) List(ctx context.Context, currentUserID *uuid.UUID, articleID uuid.UUID) ([]models.Comment, error) {
	result := []models.Comment{}
	for _, c := range r.s.comments {
		if c.articleID != articleID {
			continue
		}
		result = append(result, r.project(c, currentUserID))
	}
	// Oldest first; ids are assigned in insertion order.
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *memCommentRepo) project(c *memComment, currentUserID *uuid.UUID) models.Comment {
	author := r.s.users[c.authorID]
	return models.Comment{
		ID:              c.id,
		CreatedAt:       c.createdAt,
		UpdatedAt:       c.updatedAt,
		Body:            c.body,
		AuthorUsername:  author.Username,
		AuthorBio:       author.Bio,
		AuthorImage:     author.Image,
		FollowingAuthor: r.s.isFollowing(currentUserID, c.authorID),
	}
}

func (r *memCommentRepo) Insert(ctx context.Context, authorID uuid.UUID, slug, body string) (*models.Comment, error) {
	a := r.s.articleBySlug(slug)
	if a == nil {
		return nil, errs.ErrArticleNotFound
	}

	c := &memComment{
		id:        r.s.nextCommentID,
		articleID: a.id,
		authorID:  authorID,
		body:      body,
		createdAt: r.s.now,
		updatedAt: r.s.now,
	}
	r.s.nextCommentID++
	r.s.comments = append(r.s.comments, c)

	projected := r.project(c, nil)
	return &projected, nil
}

func (r *memCommentRepo) Delete(ctx context.Context, authorID uuid.UUID, slug string, commentID int64) error {
	a := r.s.articleBySlug(slug)
	var target *memComment
	if a != nil {
		for _, c := range r.s.comments {
			if c.id == commentID && c.articleID == a.id {
				target = c
				break
			}
		}
	}
	if target == nil {
		return errs.ErrArticleNotFound
	}
	if target.authorID != authorID {
		return errs.ErrForbidden
	}

	remaining := r.s.comments[:0]
	for _, c := range r.s.comments {
		if c != target {
			remaining = append(remaining, c)
		}
	}
	r.s.comments = remaining
	return nil
}

// --- remaining collaborators ---

type fakeHasher struct{}

func (fakeHasher) Hash(ctx context.Context, cleartext string) (string, error) {
	return "hashed:" + cleartext, nil
}

func (fakeHasher) Verify(ctx context.Context, cleartext, encoded string) error {
	if encoded == "hashed:"+cleartext {
		return nil
	}
	return errs.ErrUnauthorized
}

type recordingPublisher struct {
	subjects []string
}

func (p *recordingPublisher) Publish(subject string, event interface{}) {
	p.subjects = append(p.subjects, subject)
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}

// --- test environment ---

type testEnv struct {
	store     *memStore
	now       time.Time
	users     *UserService
	profiles  *ProfileService
	articles  *ArticleService
	comments  *CommentService
	published *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	now, err := time.Parse(time.RFC3339, "2019-10-12T07:20:50Z")
	if err != nil {
		t.Fatal(err)
	}

	store := newMemStore(now)
	clock := Clock(func() time.Time { return now })
	tokens := jwt.NewManager([]byte("test-signing-key"))
	published := &recordingPublisher{}

	userRepo := &memUserRepo{s: store}
	articleRepo := &memArticleRepo{s: store}
	commentRepo := &memCommentRepo{s: store}

	return &testEnv{
		store:     store,
		now:       now,
		users:     NewUserService(userRepo, tokens, fakeHasher{}, clock, published),
		profiles:  NewProfileService(userRepo, tokens, clock, published),
		articles:  NewArticleService(articleRepo, tokens, clock, published),
		comments:  NewCommentService(commentRepo, articleRepo, tokens, clock, published),
		published: published,
	}
}

// register creates an account and returns the Authorization header value
// for it.
func (e *testEnv) register(t *testing.T, username, email, password string) string {
	t.Helper()
	signed, err := e.users.Register(context.Background(), username, email, password)
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return "Token " + signed.Token
}
