// Package camera implements the ordered sync stages against one camera:
// discovery, link and capability resolution, access point activation,
// network handover and the HTTP time apply. Each stage is a plain function
// over injected collaborators and performs only its own bounded waits.
package camera
