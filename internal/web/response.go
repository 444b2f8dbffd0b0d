// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/codeplanet/usercenter/internal/account"
	"github.com/codeplanet/usercenter/pkg/errutil"
)

// Business response codes carried in the envelope. These are part of the
// public API contract and independent of HTTP status codes.
const (
	codeOK                = 0
	codeParamsError       = 40000
	codeNotLogin          = 40100
	codeNoAuth            = 40101
	codePasswordIncorrect = 40102
	codeAlreadyLogout     = 40300
	codeSystemError       = 50000
)

// response is the envelope every API endpoint returns.
type response struct {
	Code        int    `json:"code"`
	Data        any    `json:"data"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, resp response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Warn("response write failed", "error", err)
	}
}

func okResponse(data any) response {
	return response{Code: codeOK, Data: data, Message: "ok"}
}

func errorResponse(code int, message, description string) response {
	return response{Code: code, Message: message, Description: description}
}

// businessCode maps an engine error onto a business response code and
// message by its oops code.
func businessCode(err error) (int, string) {
	switch errutil.Code(err) {
	case account.CodeInvalidParams:
		return codeParamsError, "params error"
	case account.CodeCredentialMismatch:
		return codePasswordIncorrect, "password incorrect"
	case account.CodeAlreadyLoggedOut:
		return codeAlreadyLogout, "already logged out"
	default:
		return codeSystemError, "system error"
	}
}
