// Package api handles incoming HTTP requests, request validation and
// response formatting. It adapts the validation, study and cache maintenance
// services to JSON over HTTP.
package api
