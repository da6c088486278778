package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/todokeeper/internal/common"
)

// Register prompts for a name, email and password and creates the account.
func (a *App) Register(ctx context.Context) error {
	fullName, err := GetSimpleText(a.reader, "Enter full name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := a.password(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	id, err := a.api.Register(ctx, fullName, email, string(password))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered user #%d, you can log in now\n", id)
	return nil
}

// Login prompts for credentials. A successful login is saved as the session.
func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := a.password(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	prev := a.email
	a.email = email
	if _, err := a.api.Login(ctx, email, string(password)); err != nil {
		a.email = prev
		return err
	}
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// Logout forgets the tokens here and in the session store. The refresh
// token simply expires server side.
func (a *App) Logout(context.Context) error {
	a.api.Logout()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
