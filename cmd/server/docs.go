//go:build swagger

package main

// Built with -tags swagger after go generate has written the docs package.
import _ "github.com/estatehub/backend/docs"
