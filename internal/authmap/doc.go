// Package authmap reads and writes the aws-auth ConfigMap.
//
// The ConfigMap holds two YAML sequences: mapUsers ({userarn, username,
// groups}) and mapRoles ({rolearn, username, groups}). [Decode] and [Encode]
// convert between that text and ordered identity lists; [Document] is the
// in-memory view of both lists for one read-modify-write cycle; [Store] is
// the collaborator that fetches and writes it. [ConfigMapStore] writes with
// the fetched resourceVersion as a precondition and reports lost races as
// [ErrConflict].
package authmap
