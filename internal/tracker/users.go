package tracker

import (
	"context"
	"errors"
	"strings"

	"github.com/kidandcat/badiri/internal/db"
)

// Users returns every account in table order.
func (s *Service) Users(ctx context.Context) ([]User, error) {
	t, err := s.store.Load(ctx, db.Users, UserColumns)
	if err != nil {
		return nil, err
	}
	out := make([]User, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = userFromRow(i, r)
	}
	return out, nil
}

// ActiveUserNames lists the names that can receive assignments. It never
// returns an empty list.
func (s *Service) ActiveUserNames(ctx context.Context) ([]string, error) {
	users, err := s.Users(ctx)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, u := range users {
		if u.Status == UserActive {
			names = append(names, u.FullName)
		}
	}
	if len(names) == 0 {
		return []string{Unassigned}, nil
	}
	return names, nil
}

func validateUser(u *User) error {
	u.FullName = strings.TrimSpace(u.FullName)
	u.Email = strings.TrimSpace(u.Email)
	switch {
	case u.FullName == "":
		return required("full name")
	case u.Email == "":
		return required("email")
	case u.Password == "":
		return required("password")
	}
	if u.Role == "" {
		u.Role = RoleStandard
	}
	if !oneOf(u.Role, Roles) {
		return invalid("role", u.Role)
	}
	if u.Status == "" {
		u.Status = UserActive
	}
	if !oneOf(u.Status, UserStatuses) {
		return invalid("user status", u.Status)
	}
	return nil
}

// RegisterUser adds an active account.
func (s *Service) RegisterUser(ctx context.Context, u User) (User, error) {
	u.Status = UserActive
	if err := validateUser(&u); err != nil {
		return User{}, err
	}
	err := s.store.Update(ctx, db.Users, UserColumns, func(t *db.Table) error {
		t.Append(u.row())
		u.Index = len(t.Rows) - 1
		return nil
	})
	if err != nil {
		return User{}, err
	}
	s.log.Infow("user registered", "name", u.FullName, "role", u.Role)
	return u, nil
}

// UpdateUser overwrites the account at index, which must still be named
// oldName. A rename is carried into the Assignee column of tasks and subtasks.
func (s *Service) UpdateUser(ctx context.Context, index int, oldName string, u User) (User, error) {
	if err := validateUser(&u); err != nil {
		return User{}, err
	}
	u.Index = index
	err := s.store.Update(ctx, db.Users, UserColumns, func(t *db.Table) error {
		if index < 0 || index >= len(t.Rows) || t.Rows[index]["Full Name"] != oldName {
			return ErrNotFound
		}
		for k, v := range u.row() {
			t.Rows[index][k] = v
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}
	if u.FullName != oldName {
		if err := s.renameAssignee(ctx, oldName, u.FullName); err != nil {
			return u, err
		}
	}
	return u, nil
}

func (s *Service) renameAssignee(ctx context.Context, from, to string) error {
	var errs []error
	for _, k := range []Kind{KindTask, KindSubtask} {
		n := 0
		err := s.store.Update(ctx, k.table(), k.columns(), func(t *db.Table) error {
			for _, r := range t.Rows {
				if r["Assignee"] == from {
					r["Assignee"] = to
					n++
				}
			}
			return nil
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.log.Infow("assignee renamed", "table", k.table(), "from", from, "to", to, "rows", n)
	}
	return errors.Join(errs...)
}

// FindLogin matches an active account by trimmed, case-insensitive email and
// trimmed password.
func (s *Service) FindLogin(ctx context.Context, email, password string) (User, bool, error) {
	users, err := s.Users(ctx)
	if err != nil {
		return User{}, false, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)
	for _, u := range users {
		if strings.ToLower(strings.TrimSpace(u.Email)) == email &&
			strings.TrimSpace(u.Password) == password &&
			strings.TrimSpace(u.Status) == UserActive {
			return u, true, nil
		}
	}
	return User{}, false, nil
}
