package upstream

import (
	"context"
	"errors"
	"net/http"

	"github.com/wencuts/masterclass/internal/errs"
	"github.com/wencuts/masterclass/internal/models"
)

// UserAPI exposes the user record endpoints
type UserAPI struct {
	client *Client
}

// NewUserAPI creates the user endpoint group
func NewUserAPI(client *Client) *UserAPI {
	return &UserAPI{client: client}
}

// GetByMobile looks up a user record by mobile number. A remote 404
// is reported as errs.ErrNotFound.
func (a *UserAPI) GetByMobile(ctx context.Context, mobile string) (*models.User, error) {
	var user models.User
	err := a.client.get(ctx, "/api/user/mobile/"+mobile+"/", &user)
	if err != nil {
		var re *errs.RemoteError
		if errors.As(err, &re) && re.StatusCode == http.StatusNotFound {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Add creates a new user record
func (a *UserAPI) Add(ctx context.Context, user models.NewUser) error {
	return a.client.post(ctx, "/api/user/add/", user, nil)
}
