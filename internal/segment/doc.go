// Package segment defines the translated speech segments that drive an export
// and loads them from YAML or JSON manifests produced by the upstream
// translation and synthesis steps.
package segment
