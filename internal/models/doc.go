// Package models defines the domain entities for the split ledger:
// users, groups and their member rosters, personal contacts, expense
// transactions with their per-participant splits, and the bilateral
// financial relationships whose cached balances are refreshed after
// split events.
//
// Participants come in two flavors, expressed as a small sum type:
// Registered (carries a user id) and Guest (carries only denormalized
// contact fields and no resolvable account identity). Keeping the two
// cases as distinct types avoids flag-plus-nullable-field checks at
// every call site.
package models
