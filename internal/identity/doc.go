// Package identity defines the principal-to-groups mapping stored in aws-auth
// and the merge operations over ordered lists of them.
//
// An [Identity] is a tagged union over [KindUser] and [KindRole]. Lists are
// keyed by username: [Upsert] replaces in place or appends, [Remove] deletes
// and reports a [Warning] when the username is absent. Neither function
// retains or mutates the list it is given.
package identity
