package websocket

import (
	"log"
	"sync"

	"ecolens/models"

	"github.com/gorilla/websocket"
)

// RewardClient represents a client connected for live reward updates
type RewardClient struct {
	Conn    *websocket.Conn
	UserID  string
	writeMu sync.Mutex
}

// SafeWriteJSON safely writes JSON data to the reward client's connection
func (rc *RewardClient) SafeWriteJSON(v interface{}) error {
	rc.writeMu.Lock()
	defer rc.writeMu.Unlock()
	return rc.Conn.WriteJSON(v)
}

// Global reward hub for broadcasting events to all connected clients
var (
	rewardClients = make(map[*RewardClient]bool)
	rewardMutex   sync.RWMutex
)

// RegisterRewardClient registers a client for reward updates
func RegisterRewardClient(client *RewardClient) {
	rewardMutex.Lock()
	defer rewardMutex.Unlock()
	rewardClients[client] = true
	log.Printf("Reward client registered. Total clients: %d", len(rewardClients))
}

// UnregisterRewardClient removes a client from reward updates
func UnregisterRewardClient(client *RewardClient) {
	rewardMutex.Lock()
	defer rewardMutex.Unlock()
	delete(rewardClients, client)
	client.Conn.Close()
	log.Printf("Reward client unregistered. Total clients: %d", len(rewardClients))
}

// BroadcastRewardEvent broadcasts a reward event to all connected clients
func BroadcastRewardEvent(event models.RewardEvent) {
	rewardMutex.RLock()
	defer rewardMutex.RUnlock()

	for client := range rewardClients {
		if err := client.SafeWriteJSON(event); err != nil {
			log.Printf("Error broadcasting reward event to client: %v", err)
			// Remove client if write fails
			go UnregisterRewardClient(client)
		}
	}
}

// RewardClientCount returns the number of connected reward clients
func RewardClientCount() int {
	rewardMutex.RLock()
	defer rewardMutex.RUnlock()
	return len(rewardClients)
}
