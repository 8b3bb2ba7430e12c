// Command seedrctl is a thin CLI harness around the Seedr adapter (pkg/seedr),
// following the teacher's cobra-based command layout.
package main

func main() {
	Execute()
}
