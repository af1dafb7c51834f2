// Package labels provides the recommended Kubernetes labels for objects the
// operator and awsauthctl create.
//
// Labels use the app.kubernetes.io prefix and are assembled with a builder.
package labels
