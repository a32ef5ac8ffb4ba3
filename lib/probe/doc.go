// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package probe checks a locally running proxy over HTTP: [Prober.Healthy]
// for liveness, an authenticated model listing no other server
// answers, and [Prober.Effort] for end-to-end routing, which sends
// a tiny request for a tier selector and reads back the reasoning
// effort the proxy applied.
package probe
