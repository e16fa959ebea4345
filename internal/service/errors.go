package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrOrderTaken         = errors.New("order is already used by another menu")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// NotFoundError errors.Is(err, ErrNotFound) 成立
type NotFoundError struct {
	Kind string
	ID   uint
}

func (e *NotFoundError) Error() string { return fmt.Sprintf(`%s "%d" not found`, e.Kind, e.ID) }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func menuNotFound(id uint) error { return &NotFoundError{Kind: "Menu item", ID: id} }

func userNotFound(id uint) error { return &NotFoundError{Kind: "User", ID: id} }
