// Package textutil provides small string helpers shared across dubline:
// filesystem-safe tokens for temp artifact names and a generic conditional.
package textutil
