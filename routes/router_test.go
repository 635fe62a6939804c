package routes_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cppla/blogicum/config"
	"github.com/cppla/blogicum/middleware"
	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/routes"
	"github.com/cppla/blogicum/services"
	"github.com/cppla/blogicum/testutil"
	"github.com/cppla/blogicum/utils"
)

const csrfToken = "0123456789abcdef0123456789abcdef"

type site struct {
	t      *testing.T
	db     *gorm.DB
	fx     *testutil.Fixtures
	router *gin.Engine
}

func newSite(t *testing.T) *site {
	t.Helper()
	testutil.UseConfig(t)
	db := testutil.NewDB(t)
	utils.InvalidateByPrefix(services.CacheKeyPrefix)
	return &site{
		t:      t,
		db:     db,
		fx:     testutil.NewFixtures(t, db),
		router: routes.SetupRouter(services.New(db)),
	}
}

// browser keeps cookies between requests and echoes the CSRF token on POSTs.
type browser struct {
	s          *site
	cookies    map[string]string
	remoteAddr string
}

func (s *site) browser() *browser {
	return &browser{s: s, cookies: map[string]string{middleware.CSRFCookie: csrfToken}}
}

func (b *browser) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	b.s.t.Helper()
	var req *http.Request
	if method == http.MethodPost {
		if form == nil {
			form = url.Values{}
		}
		if _, ok := form[middleware.CSRFField]; !ok {
			form.Set(middleware.CSRFField, csrfToken)
		}
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if b.remoteAddr != "" {
		req.RemoteAddr = b.remoteAddr
	}
	for name, value := range b.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	w := httptest.NewRecorder()
	b.s.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c.Value
	}
	return w
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, path, nil)
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	return b.do(http.MethodPost, path, form)
}

func (b *browser) login(username string) {
	b.s.t.Helper()
	w := b.post("/auth/login/", url.Values{"username": {username}, "password": {"s3cret-pass"}})
	require.Equal(b.s.t, http.StatusFound, w.Code, w.Body.String())
	require.NotEmpty(b.s.t, b.cookies[middleware.SessionCookie])
}

func postPath(p *models.Post, suffix string) string {
	return fmt.Sprintf("/posts/%d/%s", p.ID, suffix)
}

func TestHealth(t *testing.T) {
	s := newSite(t)
	w := s.browser().get("/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestIndexListsPublishedPosts(t *testing.T) {
	s := newSite(t)
	alice := s.fx.User("alice", false)
	visible := s.fx.Post(alice, testutil.PostOpts{})
	hidden := s.fx.Post(alice, testutil.PostOpts{Unpublished: true})

	w := s.browser().get("/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), postPath(visible, ""))
	assert.NotContains(t, w.Body.String(), postPath(hidden, ""))
}

func TestScheduledPostIsHiddenFromAnonymous(t *testing.T) {
	s := newSite(t)
	alice := s.fx.User("alice", false)
	future := s.fx.Post(alice, testutil.PostOpts{PubDate: time.Now().Add(24 * time.Hour)})

	assert.Equal(t, http.StatusNotFound, s.browser().get(postPath(future, "")).Code)

	author := s.browser()
	author.login("alice")
	assert.Equal(t, http.StatusOK, author.get(postPath(future, "")).Code)
}

func TestHiddenCategoryPageIsNotFound(t *testing.T) {
	s := newSite(t)
	s.fx.Category("hidden", false)
	s.fx.Category("travel", true)

	b := s.browser()
	assert.Equal(t, http.StatusNotFound, b.get("/category/hidden/").Code)
	assert.Equal(t, http.StatusOK, b.get("/category/travel/").Code)
}

func TestLoginRequiredRedirectsWithNext(t *testing.T) {
	s := newSite(t)
	w := s.browser().get("/posts/create/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=%2Fposts%2Fcreate%2F", w.Header().Get("Location"))
}

func TestCreatePostRedirectsToProfile(t *testing.T) {
	s := newSite(t)
	s.fx.User("alice", false)
	b := s.browser()
	b.login("alice")

	w := b.post("/posts/create/", url.Values{
		"title":        {"Hello"},
		"text":         {"First post"},
		"pub_date":     {time.Now().UTC().Add(-time.Minute).Format(services.PubDateLayout)},
		"is_published": {"true"},
	})
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(t, "/profile/alice/", w.Header().Get("Location"))

	var count int64
	require.NoError(t, s.db.Model(&models.Post{}).Where("title = ?", "Hello").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEditByNonAuthorRedirectsToPost(t *testing.T) {
	s := newSite(t)
	alice := s.fx.User("alice", false)
	s.fx.User("bob", false)
	post := s.fx.Post(alice, testutil.PostOpts{})

	b := s.browser()
	b.login("bob")

	w := b.get(postPath(post, "edit/"))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, postPath(post, ""), w.Header().Get("Location"))

	w = b.post(postPath(post, "edit/"), url.Values{"title": {"hijacked"}, "text": {"x"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, postPath(post, ""), w.Header().Get("Location"))

	var stored models.Post
	require.NoError(t, s.db.First(&stored, post.ID).Error)
	assert.Equal(t, post.Title, stored.Title)
}

func TestStaffDeleteRedirectsToIndex(t *testing.T) {
	s := newSite(t)
	alice := s.fx.User("alice", false)
	s.fx.User("moderator", true)
	post := s.fx.Post(alice, testutil.PostOpts{})
	s.fx.Comment(post, alice, "first")

	b := s.browser()
	b.login("moderator")

	assert.Equal(t, http.StatusOK, b.get(postPath(post, "delete/")).Code)

	w := b.post(postPath(post, "delete/"), nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	var posts, comments int64
	require.NoError(t, s.db.Model(&models.Post{}).Count(&posts).Error)
	require.NoError(t, s.db.Model(&models.Comment{}).Count(&comments).Error)
	assert.Zero(t, posts)
	assert.Zero(t, comments)
}

func TestEmptyCommentIsDropped(t *testing.T) {
	s := newSite(t)
	alice := s.fx.User("alice", false)
	post := s.fx.Post(alice, testutil.PostOpts{})

	b := s.browser()
	b.login("alice")

	w := b.post(postPath(post, "comment/"), url.Values{"text": {"   "}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, postPath(post, ""), w.Header().Get("Location"))

	var count int64
	require.NoError(t, s.db.Model(&models.Comment{}).Count(&count).Error)
	assert.Zero(t, count)

	w = b.post(postPath(post, "comment/"), url.Values{"text": {"Nice one"}})
	assert.Equal(t, http.StatusFound, w.Code)
	require.NoError(t, s.db.Model(&models.Comment{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	assert.Contains(t, b.get(postPath(post, "")).Body.String(), "Nice one")
}

func TestCommentGetRedirectsToPost(t *testing.T) {
	s := newSite(t)
	alice := s.fx.User("alice", false)
	post := s.fx.Post(alice, testutil.PostOpts{})

	b := s.browser()
	b.login("alice")
	w := b.get(postPath(post, "comment/"))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, postPath(post, ""), w.Header().Get("Location"))
}

func TestForeignCommentEditRedirects(t *testing.T) {
	s := newSite(t)
	alice := s.fx.User("alice", false)
	s.fx.User("bob", false)
	post := s.fx.Post(alice, testutil.PostOpts{})
	comment := s.fx.Comment(post, alice, "mine")

	b := s.browser()
	b.login("bob")
	path := postPath(post, fmt.Sprintf("edit_comment/%d/", comment.ID))

	w := b.post(path, url.Values{"text": {"not yours"}})
	assert.Equal(t, http.StatusFound, w.Code)

	var stored models.Comment
	require.NoError(t, s.db.First(&stored, comment.ID).Error)
	assert.Equal(t, "mine", stored.Text)
}

func TestPostWithoutCSRFTokenIsForbidden(t *testing.T) {
	s := newSite(t)
	s.fx.User("alice", false)

	b := s.browser()
	w := b.post("/auth/login/", url.Values{
		"username":            {"alice"},
		"password":            {"s3cret-pass"},
		middleware.CSRFField: {"ffffffffffffffffffffffffffffffff"},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, b.cookies[middleware.SessionCookie])
}

func TestRegistrationLoginAndLogout(t *testing.T) {
	s := newSite(t)
	b := s.browser()

	w := b.post("/auth/registration/", url.Values{
		"username":  {"newbie"},
		"email":     {"newbie@example.com"},
		"password1": {"long-enough-pass"},
		"password2": {"long-enough-pass"},
	})
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(t, middleware.LoginPath, w.Header().Get("Location"))

	w = b.post("/auth/login/", url.Values{
		"username": {"newbie"},
		"password": {"long-enough-pass"},
		"next":     {"/edit_profile/"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/edit_profile/", w.Header().Get("Location"))
	assert.Equal(t, http.StatusOK, b.get("/edit_profile/").Code)

	assert.Equal(t, http.StatusOK, b.post("/auth/logout/", nil).Code)
	assert.Equal(t, http.StatusFound, b.get("/edit_profile/").Code)
}

func TestRegistrationMismatchRerendersForm(t *testing.T) {
	s := newSite(t)
	w := s.browser().post("/auth/registration/", url.Values{
		"username":  {"newbie"},
		"password1": {"long-enough-pass"},
		"password2": {"different-pass"},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, s.db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLoginRejectsOffsiteNext(t *testing.T) {
	s := newSite(t)
	s.fx.User("alice", false)
	w := s.browser().post("/auth/login/", url.Values{
		"username": {"alice"},
		"password": {"s3cret-pass"},
		"next":     {"//evil.example/"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestEditProfileRenamesUser(t *testing.T) {
	s := newSite(t)
	s.fx.User("alice", false)
	b := s.browser()
	b.login("alice")

	w := b.post("/edit_profile/", url.Values{
		"first_name": {"Alice"},
		"username":   {"alice2"},
		"email":      {"alice@example.com"},
	})
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(t, "/profile/alice2/", w.Header().Get("Location"))
	assert.Equal(t, http.StatusOK, b.get("/profile/alice2/").Code)
}

func TestUnknownPathRendersNotFound(t *testing.T) {
	s := newSite(t)
	b := s.browser()
	assert.Equal(t, http.StatusNotFound, b.get("/no/such/page/").Code)

	w := b.get("/api/v1/nothing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestStaticPages(t *testing.T) {
	s := newSite(t)
	b := s.browser()
	assert.Equal(t, http.StatusOK, b.get("/pages/about/").Code)
	assert.Equal(t, http.StatusOK, b.get("/pages/rules/").Code)
}

type apiEnvelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
}

func TestAPIMirrorsPublicPosts(t *testing.T) {
	s := newSite(t)
	alice := s.fx.User("alice", false)
	visible := s.fx.Post(alice, testutil.PostOpts{})
	hidden := s.fx.Post(alice, testutil.PostOpts{Unpublished: true})
	s.fx.Comment(visible, alice, "hello")

	b := s.browser()
	w := b.get("/api/v1/posts")
	require.Equal(t, http.StatusOK, w.Code)

	var env apiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var page struct {
		Items []struct {
			ID           uint  `json:"id"`
			CommentCount int64 `json:"comment_count"`
		} `json:"items"`
		TotalCount int64 `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, visible.ID, page.Items[0].ID)
	assert.EqualValues(t, 1, page.Items[0].CommentCount)

	// a second read is served from the cache and must be identical
	assert.Equal(t, w.Body.String(), b.get("/api/v1/posts").Body.String())

	assert.Equal(t, http.StatusOK, b.get(fmt.Sprintf("/api/v1/posts/%d", visible.ID)).Code)
	assert.Equal(t, http.StatusNotFound, b.get(fmt.Sprintf("/api/v1/posts/%d", hidden.ID)).Code)
}

func TestAPIStats(t *testing.T) {
	s := newSite(t)
	alice := s.fx.User("alice", false)
	post := s.fx.Post(alice, testutil.PostOpts{})

	b := s.browser()
	require.Equal(t, http.StatusOK, b.get(postPath(post, "")).Code)

	w := b.get(fmt.Sprintf("/api/v1/posts/%d/stats", post.ID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":0,"message":"success","data":{"pv":1,"comments_count":0}}`, w.Body.String())

	assert.Equal(t, http.StatusOK, b.get("/api/v1/stats").Code)
}

func TestEditKeepsUnpublishedCategory(t *testing.T) {
	s := newSite(t)
	alice := s.fx.User("alice", false)
	hidden := s.fx.Category("drafts", false)
	s.fx.Category("travel", true)
	post := s.fx.Post(alice, testutil.PostOpts{Category: hidden})

	b := s.browser()
	b.login("alice")
	w := b.get(postPath(post, "edit/"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), fmt.Sprintf(`<option value="%d" selected>`, hidden.ID))

	w = b.post(postPath(post, "edit/"), url.Values{
		"title":        {"Renamed"},
		"text":         {post.Text},
		"pub_date":     {post.PubDate.UTC().Format(services.PubDateLayout)},
		"is_published": {"true"},
		"category":     {fmt.Sprint(hidden.ID)},
	})
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())

	var stored models.Post
	require.NoError(t, s.db.First(&stored, post.ID).Error)
	assert.Equal(t, "Renamed", stored.Title)
	require.NotNil(t, stored.CategoryID)
	assert.Equal(t, hidden.ID, *stored.CategoryID)
	assert.Equal(t, http.StatusNotFound, s.browser().get(postPath(post, "")).Code)
}

func TestManageRequiresStaff(t *testing.T) {
	s := newSite(t)
	s.fx.User("alice", false)

	w := s.browser().get("/manage/categories/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=%2Fmanage%2Fcategories%2F", w.Header().Get("Location"))

	b := s.browser()
	b.login("alice")
	assert.Equal(t, http.StatusNotFound, b.get("/manage/categories/").Code)
	assert.Equal(t, http.StatusNotFound, b.post("/manage/locations/", url.Values{"name": {"Moon"}}).Code)

	var count int64
	require.NoError(t, s.db.Model(&models.Location{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestStaffManagesCategories(t *testing.T) {
	s := newSite(t)
	s.fx.User("editor", true)
	b := s.browser()
	b.login("editor")

	assert.Equal(t, http.StatusOK, b.get("/manage/categories/").Code)

	w := b.post("/manage/categories/", url.Values{
		"title":       {"Travel"},
		"description": {"Trips and routes"},
		"slug":        {"travel"},
	})
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(t, "/manage/categories/", w.Header().Get("Location"))

	var category models.Category
	require.NoError(t, s.db.Where("slug = ?", "travel").First(&category).Error)
	assert.False(t, category.IsPublished)
	assert.Equal(t, http.StatusNotFound, s.browser().get("/category/travel/").Code)

	w = b.post(fmt.Sprintf("/manage/categories/%d/toggle/", category.ID), nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, http.StatusOK, s.browser().get("/category/travel/").Code)

	w = b.post("/manage/categories/", url.Values{"title": {"Dup"}, "description": {"d"}, "slug": {"travel"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Category with this slug already exists.")

	w = b.get(fmt.Sprintf("/manage/categories/%d/", category.ID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Trips and routes")
}

func TestStaffManagesLocations(t *testing.T) {
	s := newSite(t)
	s.fx.User("editor", true)
	b := s.browser()
	b.login("editor")

	w := b.post("/manage/locations/", url.Values{"name": {"Harbour"}, "is_published": {"true"}})
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())

	var location models.Location
	require.NoError(t, s.db.Where("name = ?", "Harbour").First(&location).Error)
	assert.True(t, location.IsPublished)

	w = b.post(fmt.Sprintf("/manage/locations/%d/", location.ID), url.Values{"name": {"Old harbour"}})
	require.Equal(t, http.StatusFound, w.Code)
	require.NoError(t, s.db.First(&location, location.ID).Error)
	assert.Equal(t, "Old harbour", location.Name)
	assert.False(t, location.IsPublished)

	w = b.get("/manage/locations/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Old harbour")
}

func TestRegistrationCooldownStartsAfterSuccess(t *testing.T) {
	s := newSite(t)
	cfg := config.Get()
	cfg.RegisterCooldownSec = 60
	config.Set(cfg)

	b := s.browser()
	b.remoteAddr = "198.51.100.7:4000"

	w := b.post("/auth/registration/", url.Values{
		"username":  {"first"},
		"password1": {"long-enough-pass"},
		"password2": {"different-pass"},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = b.post("/auth/registration/", url.Values{
		"username":  {"first"},
		"password1": {"long-enough-pass"},
		"password2": {"long-enough-pass"},
	})
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())

	w = b.post("/auth/registration/", url.Values{
		"username":  {"second"},
		"password1": {"long-enough-pass"},
		"password2": {"long-enough-pass"},
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var count int64
	require.NoError(t, s.db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
