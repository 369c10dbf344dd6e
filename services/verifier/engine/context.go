// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"context"

	"github.com/AleutianAI/aisl/services/verifier/runtime"
)

// Interceptor intercepts named function calls during evaluation.
// mock.Registry satisfies it. Intercept returns the next sequenced
// return value and true when the name is under interception, or false
// to let the call proceed to the real target.
type Interceptor interface {
	Intercept(name string) (runtime.Value, bool)
}

type interceptorKey struct{}

// WithInterceptor scopes an Interceptor to ctx. The evaluator and any
// Invoker that honors the contract consult it before dispatching a
// call. Each test case installs its own registry this way, so mock
// state never leaks across cases or specs.
func WithInterceptor(ctx context.Context, ic Interceptor) context.Context {
	return context.WithValue(ctx, interceptorKey{}, ic)
}

// InterceptorFrom returns the Interceptor scoped to ctx, if any.
func InterceptorFrom(ctx context.Context) (Interceptor, bool) {
	ic, ok := ctx.Value(interceptorKey{}).(Interceptor)
	return ic, ok
}
