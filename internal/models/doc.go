// Package models defines the core domain models for the ledger.
//
// # Entities
//
//   - User / Profile: a registered account and its public projection
//   - Friendship: an undirected edge between two users
//   - Group: a named, creator-owned set of users used to prefill bills
//   - Bill: a shared expense with optional Items and per-participant Splits
//   - BalanceSummary: outstanding debt between one user and their counterparties
//
// # Design Principles
//
//  1. Relationships use ID strings, never pointers.
//  2. Money is decimal.Decimal; two-decimal rounding only happens when an
//     amount is allocated or presented.
//  3. A bill creator never holds a Split on their own bill. Their share is
//     implicit: Total minus the sum of materialized splits.
package models
