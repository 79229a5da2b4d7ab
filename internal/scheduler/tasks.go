package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskSequenceStepDue = "sequences.step.due"

const TaskCRMDeliveryDue = "crm.delivery.due"

type SequenceStepPayload struct {
	EnrollmentID string `json:"enrollmentId"`
	Step         int    `json:"step"`
}

type CRMDeliveryPayload struct {
	DeliveryID string `json:"deliveryId"`
}

func NewSequenceStepTask(payload SequenceStepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSequenceStepDue, data), nil
}

func ParseSequenceStepPayload(task *asynq.Task) (SequenceStepPayload, error) {
	var payload SequenceStepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SequenceStepPayload{}, err
	}
	return payload, nil
}

func NewCRMDeliveryTask(payload CRMDeliveryPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCRMDeliveryDue, data), nil
}

func ParseCRMDeliveryPayload(task *asynq.Task) (CRMDeliveryPayload, error) {
	var payload CRMDeliveryPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CRMDeliveryPayload{}, err
	}
	return payload, nil
}
