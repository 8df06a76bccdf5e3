// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

// Package extension models data contributed by third-party plugins.
//
// A DataProvider returns Datums, each a named Value of one Kind. Boolean
// datums can provide a condition that gates other datums; Evaluate keeps
// only the datums whose conditions hold. Storage is handled by
// transactions.StoreExtensionPlayerValues and StoreExtensionServerValues.
package extension
