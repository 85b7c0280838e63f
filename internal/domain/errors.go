// Package domain contains the scheduling, time-zone and caption rules of the job.
// Domain errors represent job-level failures, not transport errors.
// Adapters translate HTTP and Telegram failures into these types.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrConfig indicates the job cannot start with the given configuration.
	ErrConfig = errors.New("invalid configuration")

	// ErrInvalidConfig indicates a single configuration value is out of range.
	// It is a ConfigError, so errors.Is(err, ErrConfig) also holds.
	ErrInvalidConfig = fmt.Errorf("%w: value out of range", ErrConfig)

	// ErrZoneLookup indicates a time-zone identifier could not be resolved.
	ErrZoneLookup = errors.New("time zone lookup failed")

	// ErrFetch indicates an image payload could not be fetched.
	ErrFetch = errors.New("fetch failed")

	// ErrPublish indicates the media group could not be delivered.
	ErrPublish = errors.New("publish failed")
)

// ConfigError provides context for startup configuration failures.
type ConfigError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
	}

	return "config: " + e.Reason
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

// NewConfigError creates a configuration error with context.
func NewConfigError(field, reason string) error {
	return &ConfigError{Field: field, Reason: reason}
}

// InvalidConfigError reports a configuration value outside its allowed range.
type InvalidConfigError struct {
	Field string
	Value any
	Rule  string
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("config %s=%v: %s", e.Field, e.Value, e.Rule)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *InvalidConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// NewInvalidConfigError creates an out-of-range configuration error.
func NewInvalidConfigError(field string, value any, rule string) error {
	return &InvalidConfigError{Field: field, Value: value, Rule: rule}
}

// ZoneLookupError reports an unknown or corrupt time-zone identifier.
type ZoneLookupError struct {
	Zone  string
	Cause error
}

// Error implements the error interface.
func (e *ZoneLookupError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("zone %q: %v", e.Zone, e.Cause)
	}

	return fmt.Sprintf("zone %q not found", e.Zone)
}

// Unwrap returns the sentinel and, when present, the underlying cause.
func (e *ZoneLookupError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrZoneLookup}
	}

	return []error{ErrZoneLookup, e.Cause}
}

// NewZoneLookupError creates a zone lookup error.
func NewZoneLookupError(zone string, cause error) error {
	return &ZoneLookupError{Zone: zone, Cause: cause}
}

// FetchError reports a failed image download. One FetchError fails the whole cycle.
type FetchError struct {
	Resource string
	Reason   string
	Cause    error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.Resource, e.Reason, e.Cause)
	}

	return fmt.Sprintf("fetch %s: %s", e.Resource, e.Reason)
}

// Unwrap returns the sentinel and, when present, the underlying cause.
func (e *FetchError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrFetch}
	}

	return []error{ErrFetch, e.Cause}
}

// NewFetchError creates a fetch error for the given resource.
func NewFetchError(resource, reason string, cause error) error {
	return &FetchError{Resource: resource, Reason: reason, Cause: cause}
}

// PublishError reports a failed delivery to the destination channel.
type PublishError struct {
	ChannelID int64
	Reason    string
	Cause     error
}

// Error implements the error interface.
func (e *PublishError) Error() string {
	switch {
	case e.Cause != nil && e.Reason == "":
		return fmt.Sprintf("publish to %d: %v", e.ChannelID, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("publish to %d: %s: %v", e.ChannelID, e.Reason, e.Cause)
	}

	return fmt.Sprintf("publish to %d: %s", e.ChannelID, e.Reason)
}

// Unwrap returns the sentinel and, when present, the underlying cause.
func (e *PublishError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrPublish}
	}

	return []error{ErrPublish, e.Cause}
}

// NewPublishError creates a publish error for the given channel.
func NewPublishError(channelID int64, reason string, cause error) error {
	return &PublishError{ChannelID: channelID, Reason: reason, Cause: cause}
}

// IsConfig checks if an error is a configuration error.
func IsConfig(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsZoneLookup checks if an error is a zone lookup error.
func IsZoneLookup(err error) bool {
	return errors.Is(err, ErrZoneLookup)
}

// IsFetch checks if an error is a fetch error.
func IsFetch(err error) bool {
	return errors.Is(err, ErrFetch)
}

// IsPublish checks if an error is a publish error.
func IsPublish(err error) bool {
	return errors.Is(err, ErrPublish)
}
