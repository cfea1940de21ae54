package middleware

import (
	"strings"

	"breakly/internal/identity"
	identityerrors "breakly/internal/identity/errors"
	"breakly/internal/shared/apperror"
	"breakly/internal/shared/contextutil"
	"breakly/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	KeyUserID    = "user_id"
	KeyUserEmail = "user_email"
	KeyUserName  = "user_name"
)

// Auth verifies the bearer token and exposes the caller's identity to
// handlers under KeyUserID, KeyUserEmail and KeyUserName.
func Auth(verifier identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if !found || token == "" {
			abortWithError(c, identityerrors.ErrMissingToken)
			return
		}

		who, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			zap.L().Named("middleware.auth").Debug("token rejected",
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
			abortWithError(c, err)
			return
		}

		c.Set(KeyUserID, who.ID)
		c.Set(KeyUserEmail, who.Email)
		c.Set(KeyUserName, who.Name)
		c.Request = c.Request.WithContext(contextutil.WithUserID(c.Request.Context(), who.ID))

		c.Next()
	}
}

func abortWithError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.AbortError(c, httpErr.Status, httpErr.Code, httpErr.Message)
}
