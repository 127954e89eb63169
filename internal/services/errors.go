package services

import "github.com/collabdesk/backend/pkg/response"

// Business-rule errors surfaced verbatim to the caller. Anything else
// coming out of a service is an infrastructure failure and maps to a
// generic 500 in the response layer.
var (
	ErrNotAuthorized     = response.NewForbidden("not authorized")
	ErrQuotaExceeded     = response.NewForbidden("project quota exceeded for current plan")
	ErrProjectFinished   = response.NewBadRequest("project is finished")
	ErrProjectNotFound   = response.NewNotFound("project not found")
	ErrPostNotFound      = response.NewNotFound("post not found")
	ErrInviteNotFound    = response.NewNotFound("invite not found")
	ErrSelfInvite        = response.NewBadRequest("cannot invite yourself")
	ErrDemoTarget        = response.NewBadRequest("demo accounts cannot be invited")
	ErrSelfAsManager     = response.NewBadRequest("cannot set yourself as manager")
	ErrSelfAsClient      = response.NewBadRequest("cannot add yourself as client")
	ErrDemoAsManager     = response.NewBadRequest("demo account cannot be a manager")
	ErrDemoAsClient      = response.NewBadRequest("demo account cannot be a client")
	ErrManagersOverLimit = response.NewBadRequest("too many managers on project")
	ErrUsersOverLimit    = response.NewBadRequest("too many users on project")
	ErrLeaveAsOwner      = response.NewBadRequest("owner cannot leave own project")
	ErrStatusTooLong     = response.NewBadRequest("status must be 250 characters or less")
)

// MaxProjectMembers caps managers and clients per project.
const MaxProjectMembers = 100
