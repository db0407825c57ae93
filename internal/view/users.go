// Package view turns list state into what the console renders.
package view

import (
	"strconv"

	"useradmin/internal/domain/models"
	"useradmin/internal/listing"
)

// Mode is the one block the users page shows below its header.
type Mode string

const (
	ModeLoading Mode = "loading"
	ModeError   Mode = "error"
	ModeTable   Mode = "table"
)

// PageSizeOptions are the sizes offered by the table footer.
var PageSizeOptions = []int{10, 20, 50, 100}

// StatusOptions feed the status filter select.
var StatusOptions = []Option{
	{Value: models.StatusActive, Label: "Activo"},
	{Value: models.StatusInactive, Label: "Inactivo"},
}

type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Tag is a colored status badge.
type Tag struct {
	Label string
	Color string
}

// StatusTag renders "active" as a green "Activo" tag; anything else is a
// red "Inactivo".
func StatusTag(status string) Tag {
	if (models.User{Status: status}).Active() {
		return Tag{Label: "Activo", Color: "green"}
	}
	return Tag{Label: "Inactivo", Color: "red"}
}

// Row is one rendered table line.
type Row struct {
	ID       int64
	Username string
	Name     string
	Lastname string
	Status   Tag
}

// Pager drives the table footer.
type Pager struct {
	Page       int
	PageSize   int
	Total      int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
	Sizes      []Option
}

// Form is the create/edit modal.
type Form struct {
	Open     bool
	Editing  bool
	User     models.User
	ErrorMsg string
}

// Confirm is the delete confirmation modal.
type Confirm struct {
	Open     bool
	User     models.User
	ErrorMsg string
}

// UsersPage is the full view model of the users console.
type UsersPage struct {
	SessionID  string
	Mode       Mode
	Error      string
	Rows       []Row
	Pager      Pager
	SearchTerm string
	Status     []Option
	Form       Form
	Confirm    Confirm
}

// Input gathers what BuildUsersPage needs from a mounted page.
type Input struct {
	SessionID  string
	State      listing.ListState
	Query      listing.Query
	SearchTerm string
	Modal      listing.Modal
	FormError  string
	// FormInput is the rejected submission; the form is refilled from it.
	FormInput *models.UserInput
}

// BuildUsersPage applies the render precedence: loading first, then error,
// then the table.
func BuildUsersPage(in Input) UsersPage {
	v := UsersPage{
		SessionID:  in.SessionID,
		SearchTerm: in.SearchTerm,
		Pager:      BuildPager(in.Query.Pagination, in.State.Total),
		Status:     statusOptions(in.Query.Filter(listing.StatusKey)),
	}

	switch {
	case in.State.Loading:
		v.Mode = ModeLoading
	case in.State.Error != "":
		v.Mode = ModeError
		v.Error = in.State.Error
	default:
		v.Mode = ModeTable
		v.Rows = BuildRows(in.State.Items)
	}

	switch in.Modal {
	case listing.ModalCreate:
		v.Form = Form{Open: true, User: refill(models.User{Status: models.StatusActive}, in.FormInput), ErrorMsg: in.FormError}
	case listing.ModalEdit:
		if in.State.Selected != nil {
			v.Form = Form{Open: true, Editing: true, User: refill(*in.State.Selected, in.FormInput), ErrorMsg: in.FormError}
		}
	case listing.ModalDelete:
		if in.State.Selected != nil {
			v.Confirm = Confirm{Open: true, User: *in.State.Selected, ErrorMsg: in.FormError}
		}
	}
	return v
}

// refill overlays what the user typed on u. The id is kept and the password
// is never echoed back.
func refill(u models.User, typed *models.UserInput) models.User {
	if typed == nil {
		return u
	}
	u.Username = typed.Username
	u.Name = typed.Name
	u.Lastname = typed.Lastname
	if typed.Status != "" {
		u.Status = typed.Status
	}
	return u
}

func BuildRows(users []models.User) []Row {
	rows := make([]Row, 0, len(users))
	for _, u := range users {
		rows = append(rows, Row{
			ID:       u.ID,
			Username: u.Username,
			Name:     u.Name,
			Lastname: u.Lastname,
			Status:   StatusTag(u.Status),
		})
	}
	return rows
}

// BuildPager trusts the server total; the current page is never clamped.
func BuildPager(p listing.Pagination, total int) Pager {
	size := p.PageSize
	if size < 1 {
		size = listing.DefaultPageSize
	}
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	out := Pager{
		Page:       p.Page,
		PageSize:   size,
		Total:      total,
		TotalPages: pages,
		HasPrev:    p.Page > 1,
		HasNext:    p.Page < pages,
		PrevPage:   p.Page - 1,
		NextPage:   p.Page + 1,
	}
	for _, s := range PageSizeOptions {
		out.Sizes = append(out.Sizes, Option{Value: strconv.Itoa(s), Label: strconv.Itoa(s) + " / página", Selected: s == size})
	}
	return out
}

func statusOptions(current string) []Option {
	out := make([]Option, 0, len(StatusOptions))
	for _, o := range StatusOptions {
		o.Selected = o.Value == current
		out = append(out, o)
	}
	return out
}
