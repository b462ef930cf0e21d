// Package loam loads exercise catalogues from a directory of documents
// managed by Loam: one markdown (or JSON) document per exercise, front matter
// for the exercise fields and the body as its start message.
package loam
