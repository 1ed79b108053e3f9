package handler

// APIV1Prefix is the canonical base path for public HTTP API v1.
const APIV1Prefix = "/api/v1"

// SessionHeader carries the session token for clients that do not keep cookies.
const SessionHeader = "X-Session-Token"
