package types

type NotificationStatus string

const (
	NotificationStatusPending  NotificationStatus = "PENDING"
	NotificationStatusSent     NotificationStatus = "SENT"
	NotificationStatusFailed   NotificationStatus = "FAILED"
	NotificationStatusRetrying NotificationStatus = "RETRYING"
)

type NotificationChannel string

const (
	NotificationChannelEmail NotificationChannel = "EMAIL"
	NotificationChannelSMS   NotificationChannel = "SMS"
	NotificationChannelPush  NotificationChannel = "PUSH"
)

type NotificationType string

const (
	NotificationTypePaymentSuccess          NotificationType = "PAYMENT_SUCCESS"
	NotificationTypePaymentFailed           NotificationType = "PAYMENT_FAILED"
	NotificationTypePaymentPending          NotificationType = "PAYMENT_PENDING"
	NotificationTypeSubscriptionCreated     NotificationType = "SUBSCRIPTION_CREATED"
	NotificationTypeSubscriptionRenewed     NotificationType = "SUBSCRIPTION_RENEWED"
	NotificationTypeSubscriptionCancelled   NotificationType = "SUBSCRIPTION_CANCELLED"
	NotificationTypeSubscriptionExpired     NotificationType = "SUBSCRIPTION_EXPIRED"
	NotificationTypeSubscriptionExpiringSoon NotificationType = "SUBSCRIPTION_EXPIRING_SOON"
)

type OfferStatus string

const (
	OfferStatusActive   OfferStatus = "ACTIVE"
	OfferStatusInactive OfferStatus = "INACTIVE"
)
