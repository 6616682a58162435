/*
Package mock provides mock implementations of interfaces for testing purposes.

The mock service clients can be used for running tests without relying on
a live emulator to be set up. By default they issue their API calls
against shared in-memory caches that imitate the emulator's state.
*/
package mock
