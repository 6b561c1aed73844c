package repository

import "errors"

// Sentinel errors for license repositories.
var (
	// ErrEmptyLicenseName is returned when a lookup passes an empty name.
	ErrEmptyLicenseName = errors.New("license name can not be empty")

	// ErrLicenseNotFound is returned when no license has the requested name.
	ErrLicenseNotFound = errors.New("license not found")

	// ErrNoBaseLocation is returned when a repository has no base location.
	ErrNoBaseLocation = errors.New("no base location defined")

	// ErrNoDefinitionFile is returned when neither licenses.yaml nor
	// licenses.properties exists under the base location.
	ErrNoDefinitionFile = errors.New("no license definition file found")

	// ErrNotLoaded is returned when a repository is used before Load.
	ErrNotLoaded = errors.New("repository was not loaded")

	// ErrAlreadyLoaded is returned when Load is called twice.
	ErrAlreadyLoaded = errors.New("repository was already loaded")

	// ErrEmptyStore is returned when no repository contributed a license.
	ErrEmptyStore = errors.New("license store is empty")
)
