package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"useradmin/internal/domain/models"
	"useradmin/internal/http/middleware"
	"useradmin/internal/listing"
	"useradmin/internal/repositories"
	"useradmin/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UsersAPI serves the users REST resource the console reads from.
type UsersAPI struct {
	Repo   repositories.UserRepository
	Logger *zap.SugaredLogger
	// HashCost overrides the bcrypt cost; zero means the library default.
	HashCost int
}

func (h UsersAPI) service(c *gin.Context) services.UserService {
	return services.UserService{
		Repo:      h.Repo,
		Logger:    h.Logger,
		RequestID: middleware.GetRequestID(c),
		HashCost:  h.HashCost,
	}
}

// GetUsers answers GET /users?status=&q=&_page=&_limit= with
// {"data": [...], "totalUsers": n}.
func (h UsersAPI) GetUsers(c *gin.Context) {
	f := repositories.UserFilter{
		Status: strings.TrimSpace(c.Query(listing.StatusKey)),
		Query:  strings.TrimSpace(c.Query(listing.SearchKey)),
		Page:   queryInt(c, listing.PageParam, 1),
		Limit:  queryInt(c, listing.LimitParam, listing.DefaultPageSize),
	}
	page, err := h.service(c).List(c.Request.Context(), f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("X-Total-Count", strconv.Itoa(page.TotalUsers))
	c.JSON(http.StatusOK, page)
}

func (h UsersAPI) GetUserByID(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	u, err := h.service(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h UsersAPI) CreateUser(c *gin.Context) {
	var in models.UserInput
	if !BindJSONOrError(c, &in) {
		return
	}
	u, err := h.service(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h UsersAPI) UpdateUser(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	var in models.UserInput
	if !BindJSONOrError(c, &in) {
		return
	}
	u, err := h.service(c).Update(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h UsersAPI) DeleteUser(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if err := h.service(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted", "id": id})
}
