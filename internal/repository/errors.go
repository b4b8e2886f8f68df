package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrDuplicateKey is returned when a write violates a unique index
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNotFound is returned by updates that matched no document
	ErrNotFound = errors.New("document not found")
	// ErrPartitionExists is returned when a target partition is already present
	ErrPartitionExists = errors.New("partition already exists")
	// ErrPartitionNotFound is returned when a source partition is missing
	ErrPartitionNotFound = errors.New("partition not found")
)

// Mongo server error codes used by the partition store
const (
	codeNamespaceNotFound = 26
	codeNamespaceExists   = 48
)

func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return errors.Join(ErrDuplicateKey, err)
	}
	return err
}

func hasErrorCode(err error, code int) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.HasErrorCode(code)
	}
	return false
}
