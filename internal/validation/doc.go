// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

// Package validation provides struct validation using go-playground/validator v10.
//
// A thread-safe singleton validator is shared by every request handler.
// Field names in errors come from json tags, so messages refer to the names
// clients send.
//
// # Custom Tags
//
//   - notblank: string must contain something other than whitespace
//     (from validator's non-standard validators)
//   - timezone: IANA zone name loadable with time.LoadLocation
//   - formtime: time in FormTimeLayout (2006-01-02T15:04), the value of an
//     HTML datetime-local input
//
// # API Error Integration
//
// ToAPIError produces errors in the API envelope format:
//
//	// Single field error
//	{
//	    "code": "VALIDATION_FAILED",
//	    "message": "location is required",
//	    "details": {"field": "location", "tag": "required", "value": ""}
//	}
//
//	// Multiple field errors
//	{
//	    "code": "VALIDATION_FAILED",
//	    "message": "username: username is required; email: email must be a valid email address",
//	    "details": {
//	        "fields": [
//	            {"field": "username", "tag": "required", "message": "..."},
//	            {"field": "email", "tag": "email", "message": "..."}
//	        ]
//	    }
//	}
//
// # Usage
//
//	type createUserRequest struct {
//	    Username string `json:"username" validate:"required,min=3,max=80,alphanum"`
//	    Email    string `json:"email" validate:"required,email"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // respond 400 with apiErr
//	}
package validation
