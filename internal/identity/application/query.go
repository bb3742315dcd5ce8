package application

import (
	"github.com/luxtrip/go-busline/pkg/domain"
)

// CredentialsData carries the login credentials.
type CredentialsData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authenticateQuery struct {
	data CredentialsData
}

func (q authenticateQuery) QueryName() string {
	return "Authenticate"
}

func (q authenticateQuery) Payload() CredentialsData {
	return q.data
}

func NewAuthenticateQuery(data CredentialsData) domain.Query[CredentialsData] {
	return authenticateQuery{data: data}
}

// FindUsersData selects users. A nil UserID means all users.
type FindUsersData struct {
	UserID *int `json:"user_id,omitempty"`
}

type findUsersQuery struct {
	data FindUsersData
}

func (q findUsersQuery) QueryName() string {
	return "FindUsers"
}

func (q findUsersQuery) Payload() FindUsersData {
	return q.data
}

func NewFindUsersQuery(data FindUsersData) domain.Query[FindUsersData] {
	return findUsersQuery{data: data}
}
