// Package repository holds the record store the venue core depends on.
package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("record not found")

// ErrSeatTaken is returned when a seat was occupied between the check and the write.
var ErrSeatTaken = errors.New("seat already occupied")

// ErrInsufficientBalance is returned when a debit would take a balance below zero.
var ErrInsufficientBalance = errors.New("insufficient balance")
