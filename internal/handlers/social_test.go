package handlers

import (
	"net/http"

	"github.com/soumyacodes007/social-media-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countedLikes struct {
	Count int           `json:"count"`
	Likes []models.Like `json:"likes"`
}

type countedShares struct {
	Count  int            `json:"count"`
	Shares []models.Share `json:"shares"`
}

// =============================================================================
// LIKES, SHARES, COMMENTS
// =============================================================================

func (suite *HandlersTestSuite) TestLikeToggle() {
	t := suite.T()
	postID := suite.createPost()["id"].(string)
	body := map[string]string{"postId": postID, "userId": "5550000001"}

	w := suite.request(http.MethodPost, "/api/like", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, postID, decodeBody[models.Like](t, w).PostID)

	likes := decodeBody[countedLikes](t, suite.request(http.MethodGet, "/api/posts/"+postID+"/likes", nil))
	assert.Equal(t, 1, likes.Count)

	w = suite.request(http.MethodPost, "/api/like", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unliked", decodeBody[map[string]string](t, w)["message"])

	likes = decodeBody[countedLikes](t, suite.request(http.MethodGet, "/api/posts/"+postID+"/likes", nil))
	assert.Equal(t, 0, likes.Count)
	assert.Empty(t, likes.Likes)

	w = suite.request(http.MethodPost, "/api/like", body)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func (suite *HandlersTestSuite) TestLikeRequiresBothIDs() {
	w := suite.request(http.MethodPost, "/api/like", map[string]string{"postId": "p"})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "userId", decodeBody[map[string]interface{}](suite.T(), w)["field"])
}

func (suite *HandlersTestSuite) TestSharePost() {
	t := suite.T()
	postID := suite.createPost()["id"].(string)

	for i := 0; i < 2; i++ {
		w := suite.request(http.MethodPost, "/api/share", map[string]string{"postId": postID, "userId": "5550000001"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	shares := decodeBody[countedShares](t, suite.request(http.MethodGet, "/api/posts/"+postID+"/shares", nil))
	assert.Equal(t, 2, shares.Count)
	assert.Len(t, shares.Shares, 2)
}

func (suite *HandlersTestSuite) TestComments() {
	t := suite.T()
	postID := suite.createPost()["id"].(string)
	otherID := suite.createPost()["id"].(string)

	w := suite.request(http.MethodPost, "/api/comments", map[string]string{"postId": postID, "userId": "u1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, text := range []string{"nice", "love it"} {
		w = suite.request(http.MethodPost, "/api/comments", map[string]string{
			"postId": postID, "userId": "u1", "comment": text,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	w = suite.request(http.MethodPost, "/api/comments", map[string]string{
		"postId": otherID, "userId": "u2", "comment": "elsewhere",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	comments := decodeBody[[]models.Comment](t, suite.request(http.MethodGet, "/api/comments?postId="+postID, nil))
	assert.Len(t, comments, 2)

	comments = decodeBody[[]models.Comment](t, suite.request(http.MethodGet, "/api/posts/"+otherID+"/comments", nil))
	require.Len(t, comments, 1)
	assert.Equal(t, "elsewhere", comments[0].Comment)

	comments = decodeBody[[]models.Comment](t, suite.request(http.MethodGet, "/api/comments", nil))
	assert.Len(t, comments, 3)
}

// =============================================================================
// USERS AND FOLLOWS
// =============================================================================

func (suite *HandlersTestSuite) TestFollowToggle() {
	t := suite.T()
	body := map[string]string{"followerId": "5550000001", "followingId": "5550000002"}

	w := suite.request(http.MethodPost, "/api/users/follow", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "followed", decodeBody[map[string]interface{}](t, w)["message"])

	followers := decodeBody[[]models.User](t, suite.request(http.MethodGet, "/api/users/5550000002/followers", nil))
	require.Len(t, followers, 1)
	assert.Equal(t, "5550000001", followers[0].Phone)

	following := decodeBody[[]models.User](t, suite.request(http.MethodGet, "/api/users/5550000001/following", nil))
	require.Len(t, following, 1)
	assert.Equal(t, "5550000002", following[0].Phone)

	profile := decodeBody[map[string]interface{}](t, suite.request(http.MethodGet, "/api/users/5550000002", nil))
	assert.EqualValues(t, 1, profile["followersCount"])
	assert.EqualValues(t, 0, profile["followingCount"])

	w = suite.request(http.MethodPost, "/api/users/follow", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unfollowed", decodeBody[map[string]interface{}](t, w)["message"])

	followers = decodeBody[[]models.User](t, suite.request(http.MethodGet, "/api/users/5550000002/followers", nil))
	assert.Empty(t, followers)
}

func (suite *HandlersTestSuite) TestFollowSelfIsRejected() {
	w := suite.request(http.MethodPost, "/api/users/follow", map[string]string{
		"followerId": "5550000001", "followingId": "5550000001",
	})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestUnknownUser() {
	w := suite.request(http.MethodGet, "/api/users/5559999999", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, "/api/users/5559999999/followers", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestUserStatus() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/user/status", map[string]string{"phone": "5550000001"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/api/user/status", map[string]interface{}{"phone": "5550000001", "isOnline": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decodeBody[models.User](t, w).IsOnline)

	w = suite.request(http.MethodPost, "/api/user/status", map[string]interface{}{"phone": "5550000001", "isOnline": false})
	require.Equal(t, http.StatusOK, w.Code)

	user := decodeBody[models.User](t, suite.request(http.MethodGet, "/api/users/5550000001", nil))
	assert.False(t, user.IsOnline)
	assert.True(t, user.LastSeen.Equal(suite.now), "lastSeen %s", user.LastSeen)
}
