// Package port checks host TCP port availability for the documentation
// server.
//
// Availability is tested by briefly binding the port with net.Listen on
// the same host address the server will use, which asks the OS directly
// instead of parsing /proc/net/* or shelling out to lsof/ss.
package port
