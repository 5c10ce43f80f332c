/*
Package roomchat is an implementation of a multi-room text chat server.

transport subdirectory contains the connection-related pieces which know
nothing about chat. Clients connect over plain TCP or SSH.

chat subdirectory contains the chat-related pieces which know nothing about
sockets: sessions, rooms, the room registry and the account store. Each of
them is its own goroutine and they only talk through messages.

The Host type is the glue between the transport and chat pieces.
*/
package roomchat
