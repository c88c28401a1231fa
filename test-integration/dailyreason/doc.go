// Package integration runs the daily reason service end to end against a
// containerized Postgres and in-process fakes of the generation and CMS APIs.
package integration
