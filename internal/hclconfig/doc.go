// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package hclconfig is the HCL implementation of config.Loader.
//
// All files handed to one Load call form a single workspace: `locals`
// blocks from every file are evaluated first and are visible everywhere as
// local.<name>, so a plan may be split from the values it shares with other
// plans. Plan attributes are evaluated at load time. Fragment templates are
// kept as expressions and evaluated per composition.
package hclconfig
