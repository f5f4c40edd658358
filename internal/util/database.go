package util

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"
	"github.com/soumyacodes007/social-media-backend/internal/database"
	"github.com/soumyacodes007/social-media-backend/internal/errors"
	"github.com/soumyacodes007/social-media-backend/internal/repository"
	"gorm.io/gorm"
)

// DatabaseUnavailableMessage is the body message of every 503 caused by a lost database
const DatabaseUnavailableMessage = "Service Unavailable: Could not connect to the database."

// HandleDBError handles database errors and sends appropriate HTTP responses.
// Returns true if the error was handled (and a response was sent).
// action describes the failed operation, e.g. "fetching posts".
func HandleDBError(c *gin.Context, err error, resourceName, action string) bool {
	if err == nil {
		return false
	}

	switch {
	case stderrors.Is(err, repository.ErrNotFound), stderrors.Is(err, gorm.ErrRecordNotFound):
		RespondNotFound(c, resourceName)
	case stderrors.Is(err, repository.ErrDuplicate), stderrors.Is(err, gorm.ErrDuplicatedKey):
		RespondConflict(c, resourceName)
	case stderrors.Is(err, repository.ErrInvalidInput):
		RespondBadRequest(c, err.Error())
	case stderrors.Is(err, database.ErrUnavailable):
		RespondServiceUnavailable(c, DatabaseUnavailableMessage)
	default:
		RespondWithAPIError(c, errors.DatabaseError("Error "+action, err))
	}
	return true
}
