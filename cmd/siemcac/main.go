// Package main provides the siemcac CLI for SIEM configuration
// management: template resolution, validation, planning and deployment.
package main

func main() {
	Execute()
}
