// Package credentials manages the three TLS files (CA certificate, client
// certificate, client key) the camera uses for MQTTS.
//
// Each slot is independent. A file is validated locally before anything is
// sent: empty files, files over MaxFileSize and files with an extension the
// slot does not accept are rejected with a specific reason and no request.
// Clearing an occupied slot asks for confirmation, then deletes the file on
// the device and clears the slot locally whether or not the delete
// succeeded. Clearing an empty slot never touches the network.
package credentials
