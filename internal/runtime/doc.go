// Package runtime provides the execution context for git-stack commands.
//
// It bundles the opened repository, its layered configuration and the
// logger so commands receive them as one value.
package runtime
