package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/myschool/myschool/core"
	"github.com/myschool/myschool/core/user"
)

// addUser updates or creates a user.User. The account is always left active.
func (cli *commandLine) addUser(name, email, pwd string, isAdmin, isStaff bool) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)
	now := time.Now().UTC()

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	isNew := false
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		isNew = true
		usr = user.User{
			ID:        uuid.New().String(),
			Email:     email,
			Roles:     []string{},
			CreatedAt: now,
		}
	}

	usr.Name = name
	usr.IsActive = true
	usr.UpdatedAt = now
	switch {
	case isAdmin:
		usr.Roles = user.AllRoles
	case isStaff:
		usr.Roles = user.StaffRoles
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	if isNew {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	}
	return err
}
