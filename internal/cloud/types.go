package cloud

// apiResponse is the envelope every ClickHouse Cloud endpoint wraps its
// payload in.
type apiResponse[T any] struct {
	Result *T        `json:"result"`
	Error  *apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Organization is a ClickHouse Cloud organization.
type Organization struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Service is a ClickHouse Cloud instance.
type Service struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Provider           string          `json:"provider"`
	Region             string          `json:"region"`
	State              string          `json:"state"`
	Tier               string          `json:"tier,omitempty"`
	IdleScaling        *bool           `json:"idleScaling,omitempty"`
	IdleTimeoutMinutes int             `json:"idleTimeoutMinutes,omitempty"`
	IPAccessList       []IPAccessEntry `json:"ipAccessList,omitempty"`
	CreatedAt          string          `json:"createdAt,omitempty"`
	Endpoints          []Endpoint      `json:"endpoints,omitempty"`
	MinReplicaMemoryGB int             `json:"minReplicaMemoryGb,omitempty"`
	MaxReplicaMemoryGB int             `json:"maxReplicaMemoryGb,omitempty"`
	NumReplicas        int             `json:"numReplicas,omitempty"`
}

// IPAccessEntry is one allowed source in a service's IP access list.
type IPAccessEntry struct {
	Source      string `json:"source"`
	Description string `json:"description,omitempty"`
}

// Endpoint is a connectable address exposed by a service.
type Endpoint struct {
	Protocol string `json:"protocol"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
}

// Backup is a service backup.
type Backup struct {
	ID          string `json:"id"`
	ServiceID   string `json:"serviceId,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt,omitempty"`
	FinishedAt  string `json:"finishedAt,omitempty"`
	SizeInBytes int64  `json:"sizeInBytes,omitempty"`
}

// CreateServiceRequest describes a new service. Name, Provider and Region
// are required; everything else falls back to API defaults when omitted.
type CreateServiceRequest struct {
	Name               string          `json:"name"`
	Provider           string          `json:"provider"`
	Region             string          `json:"region"`
	IPAccessList       []IPAccessEntry `json:"ipAccessList,omitempty"`
	MinReplicaMemoryGB int             `json:"minReplicaMemoryGb,omitempty"`
	MaxReplicaMemoryGB int             `json:"maxReplicaMemoryGb,omitempty"`
	NumReplicas        int             `json:"numReplicas,omitempty"`
	IdleScaling        *bool           `json:"idleScaling,omitempty"`
	IdleTimeoutMinutes int             `json:"idleTimeoutMinutes,omitempty"`
	BackupID           string          `json:"backupId,omitempty"`
	ReleaseChannel     string          `json:"releaseChannel,omitempty"`
}

// CreateServiceResponse carries the new service plus its one-time password.
type CreateServiceResponse struct {
	Service  Service `json:"service"`
	Password string  `json:"password"`
}

type stateChangeRequest struct {
	Command string `json:"command"`
}
