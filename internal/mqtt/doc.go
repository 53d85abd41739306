// Package mqtt manages the data-report platform group: the MQTT broker the
// camera publishes snapshots to.
//
// The firmware reports TLS as "ssl" and accepts both spellings on write.
// Reads are normalized into TLSEnable and writes send both. The credential
// file names inside the group are owned by the credentials manager, which
// the section hands them to after every read and takes them back from
// before every write.
//
// StatusPoller re-reads the group every two seconds to follow the broker
// connection flag. It is started once per session and stopped explicitly.
package mqtt
