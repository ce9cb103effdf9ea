package hub

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/cafe-venue/utils"
)

var (
	ErrClosed       = errors.New("socket closed")
	ErrBackpressure = errors.New("socket send buffer full")
)

// Socket is a live connection able to take serialized frames.
type Socket interface {
	ID() string
	Open() bool
	Send(frame []byte) error
}

// Registry maps client identifiers to their live socket and fans events out to them.
type Registry struct {
	clients map[string]Socket
	mutex   sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Socket)}
}

// Bind -> register socket under clientID, returning the socket it replaced (if any).
// The replaced socket is not closed here.
func (r *Registry) Bind(clientID string, socket Socket) Socket {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	old := r.clients[clientID]
	r.clients[clientID] = socket
	if old == socket {
		return nil
	}
	return old
}

// Unbind removes clientID only while socket is still the one registered for it.
// It reports whether the binding was removed.
func (r *Registry) Unbind(clientID string, socket Socket) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if current, ok := r.clients[clientID]; !ok || current != socket {
		return false
	}
	delete(r.clients, clientID)
	return true
}

func (r *Registry) Lookup(clientID string) (Socket, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	socket, ok := r.clients[clientID]
	return socket, ok
}

func (r *Registry) Count() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.clients)
}

// Broadcast -> send event to every registered socket that is still open
func (r *Registry) Broadcast(event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling broadcast: %v", err)
		return
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	utils.InfoLogger.Debugf("Broadcasting %d bytes to %d clients", len(data), len(r.clients))
	for clientID, socket := range r.clients {
		deliver(clientID, socket, data)
	}
}

// Unicast -> send event to the socket bound to clientID; false when unbound or closed
func (r *Registry) Unicast(clientID string, event interface{}) bool {
	r.mutex.Lock()
	socket, ok := r.clients[clientID]
	r.mutex.Unlock()
	if !ok {
		return false
	}

	data, err := json.Marshal(event)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling message for %s: %v", clientID, err)
		return false
	}
	return deliver(clientID, socket, data)
}

// Send writes event to a socket regardless of registration.
func Send(socket Socket, event interface{}) bool {
	data, err := json.Marshal(event)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling message: %v", err)
		return false
	}
	return deliver("", socket, data)
}

func deliver(clientID string, socket Socket, data []byte) bool {
	if !socket.Open() {
		return false
	}
	if err := socket.Send(data); err != nil {
		utils.InfoLogger.WithFields(logrus.Fields{
			"client": clientID,
			"socket": socket.ID(),
		}).Debugf("dropping frame: %v", err)
		return false
	}
	return true
}
