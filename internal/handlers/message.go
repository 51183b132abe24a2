package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"grwcomm/internal/cache"
	"grwcomm/internal/models"
	"grwcomm/internal/observability"
	"grwcomm/internal/repositories"
	"grwcomm/internal/telemetry"
	"grwcomm/internal/ws"
)

const defaultConversationLimit = 50

// MessageHandler serves sending and reading of direct messages. The first
// message of a (pair, category) conversation goes through slot booking;
// replies inside an existing conversation are unrestricted.
type MessageHandler struct {
	messageRepo    repositories.MessageRepository
	bookingRepo    repositories.BookingRepository
	reportRepo     repositories.ReportRepository
	revelationRepo repositories.RevelationRepository
	userRepo       repositories.UserRepository
	audit          *telemetry.AuditEmitter
	hub            *ws.Hub
	unreadCache    *cache.UnreadCache
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(
	messageRepo repositories.MessageRepository,
	bookingRepo repositories.BookingRepository,
	reportRepo repositories.ReportRepository,
	revelationRepo repositories.RevelationRepository,
	userRepo repositories.UserRepository,
	audit *telemetry.AuditEmitter,
	hub *ws.Hub,
	unreadCache *cache.UnreadCache,
) *MessageHandler {
	return &MessageHandler{
		messageRepo:    messageRepo,
		bookingRepo:    bookingRepo,
		reportRepo:     reportRepo,
		revelationRepo: revelationRepo,
		userRepo:       userRepo,
		audit:          audit,
		hub:            hub,
		unreadCache:    unreadCache,
	}
}

type sendMessageRequest struct {
	ReceiverID int    `json:"receiver_id" binding:"required"`
	CategoryID *int   `json:"category_id"`
	Content    string `json:"content" binding:"required,max=5000"`
}

func denyStatus(reason models.DenyReason) int {
	switch reason {
	case models.ReasonInvalidCategory:
		return http.StatusBadRequest
	case models.ReasonBlocked:
		return http.StatusForbidden
	case models.ReasonNotFound:
		return http.StatusNotFound
	default:
		// ALREADY_SENT, SLOTS_FULL, NO_CREDITS, SELF_MESSAGE
		return http.StatusConflict
	}
}

func denyJSON(c *gin.Context, reason models.DenyReason) {
	c.JSON(denyStatus(reason), gin.H{"allowed": false, "reason": reason})
}

// Send delivers a message. Category-scoped first contact consumes a slot
// and a credit atomically; everything after that is a plain insert.
func (h *MessageHandler) Send(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	senderID := c.GetInt("userID")
	if req.ReceiverID == senderID {
		denyJSON(c, models.ReasonSelfMessage)
		return
	}

	if _, err := h.userRepo.GetByID(ctx, req.ReceiverID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			denyJSON(c, models.ReasonNotFound)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load receiver"})
		return
	}

	blocked, err := h.reportRepo.IsBlocked(ctx, senderID, req.ReceiverID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check block status"})
		return
	}
	if blocked {
		denyJSON(c, models.ReasonBlocked)
		return
	}

	requestID := requestIDFromContext(c)

	if req.CategoryID == nil {
		// Uncategorised messages never touch slots or credits.
		h.deliverReply(c, senderID, req, requestID)
		return
	}

	exists, err := h.messageRepo.HasConversation(ctx, senderID, req.ReceiverID, req.CategoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check conversation"})
		return
	}
	if exists {
		h.deliverReply(c, senderID, req, requestID)
		return
	}

	// First contact: verified senders only, unless staff.
	if !c.GetBool("isSuperuser") {
		profile, err := h.userRepo.GetProfile(ctx, senderID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
			return
		}
		if !profile.IsVerified {
			c.JSON(http.StatusForbidden, gin.H{"error": "verify your profile to start new conversations"})
			return
		}
	}

	booking, msg, decision, err := h.bookingRepo.BookSlot(ctx, senderID, req.ReceiverID, *req.CategoryID, req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to book slot"})
		return
	}
	if !decision.Allowed {
		observability.IncBooking(string(decision.Reason))
		denyJSON(c, decision.Reason)
		return
	}

	observability.IncBooking("booked")
	observability.IncMessageSent("booking")
	observability.IncCreditUsed()

	h.audit.Emit(ctx, telemetry.ActionSlotBooked,
		fmt.Sprintf("category %d booking %d", booking.CategoryID, booking.ID),
		requestID, intPtr(senderID), intPtr(req.ReceiverID))
	h.audit.Emit(ctx, telemetry.ActionCreditUsed,
		fmt.Sprintf("message %d", msg.ID),
		requestID, intPtr(senderID), intPtr(req.ReceiverID))

	h.fanOut(c, *msg)
	c.JSON(http.StatusCreated, gin.H{"message": msg, "booking": booking})
}

// deliverReply inserts a message into an existing conversation (or an
// uncategorised one) without slot accounting.
func (h *MessageHandler) deliverReply(c *gin.Context, senderID int, req sendMessageRequest, requestID string) {
	ctx := c.Request.Context()

	firstAnswer := false
	if req.CategoryID != nil {
		sent, err := h.messageRepo.CountFrom(ctx, senderID, req.ReceiverID, req.CategoryID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check conversation"})
			return
		}
		firstAnswer = sent == 0
	}

	msg, err := h.messageRepo.Create(ctx, senderID, req.ReceiverID, req.CategoryID, req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}

	observability.IncMessageSent("reply")
	if firstAnswer {
		h.audit.Emit(ctx, telemetry.ActionMessageAnswered,
			fmt.Sprintf("message %d", msg.ID),
			requestID, intPtr(senderID), intPtr(req.ReceiverID))
	}

	h.fanOut(c, msg)
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

func (h *MessageHandler) fanOut(c *gin.Context, msg models.Message) {
	if h.hub != nil {
		h.hub.BroadcastMessage(ws.ConversationKey(msg.SenderID, msg.ReceiverID, msg.CategoryID), msg)
	}
	h.unreadCache.Invalidate(c.Request.Context(), msg.ReceiverID)
}

type conversationMessage struct {
	models.Message
	SenderName string `json:"sender_name"`
}

// GetConversation returns the recent history with a peer, with each
// sender's visible name resolved against the viewer's revelations.
func (h *MessageHandler) GetConversation(c *gin.Context) {
	peerID, err := strconv.Atoi(c.Param("peer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid peer id"})
		return
	}

	ctx := c.Request.Context()
	userID := c.GetInt("userID")

	var categoryID *int
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
			return
		}
		categoryID = &id
	}

	limit := defaultConversationLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	msgs, err := h.messageRepo.GetConversation(ctx, userID, peerID, categoryID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		return
	}

	// Opening a conversation reads it.
	if _, err := h.messageRepo.MarkConversationRead(ctx, userID, peerID, categoryID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark conversation read"})
		return
	}
	h.unreadCache.Invalidate(ctx, userID)

	out := make([]conversationMessage, 0, len(msgs))
	nameCache := map[int]string{}
	for _, m := range msgs {
		name, ok := nameCache[m.SenderID]
		if !ok {
			name, err = h.visibleSenderName(c, m.SenderID, userID, categoryID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve sender name"})
				return
			}
			nameCache[m.SenderID] = name
		}
		out = append(out, conversationMessage{Message: m, SenderName: name})
	}

	c.JSON(http.StatusOK, gin.H{"messages": out})
}

// visibleSenderName resolves the name viewerID sees for senderID. The
// viewer always sees their own real name.
func (h *MessageHandler) visibleSenderName(c *gin.Context, senderID, viewerID int, categoryID *int) (string, error) {
	ctx := c.Request.Context()

	sender, err := h.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return "", err
	}
	if senderID == viewerID {
		return sender.RealName(), nil
	}

	profile, err := h.userRepo.GetProfile(ctx, senderID)
	if err != nil {
		return "", err
	}
	revealed, err := h.revelationRepo.HasRevealed(ctx, senderID, viewerID, categoryID)
	if err != nil {
		return "", err
	}
	return models.VisibleName(sender, profile, revealed), nil
}

type conversationEntry struct {
	models.ConversationSummary
	PeerName string `json:"peer_name"`
}

// ListConversations returns the caller's inbox with each peer's visible
// name resolved for the summary's category scope.
func (h *MessageHandler) ListConversations(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetInt("userID")

	summaries, err := h.messageRepo.ListConversations(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}

	peerIDs := make([]int, 0, len(summaries))
	seen := map[int]bool{}
	for _, s := range summaries {
		if !seen[s.PeerID] {
			seen[s.PeerID] = true
			peerIDs = append(peerIDs, s.PeerID)
		}
	}
	peerUsers, err := h.userRepo.BulkByIDs(ctx, peerIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load peers"})
		return
	}
	peers := make(map[int]models.User, len(peerUsers))
	for _, u := range peerUsers {
		peers[u.ID] = u
	}

	out := make([]conversationEntry, 0, len(summaries))
	for _, s := range summaries {
		entry := conversationEntry{ConversationSummary: s, PeerName: models.AnonymousName}
		if peer, ok := peers[s.PeerID]; ok {
			profile, err := h.userRepo.GetProfile(ctx, peer.ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load peers"})
				return
			}
			revealed, err := h.revelationRepo.HasRevealed(ctx, peer.ID, userID, s.CategoryID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load peers"})
				return
			}
			entry.PeerName = models.VisibleName(peer, profile, revealed)
		}
		out = append(out, entry)
	}

	c.JSON(http.StatusOK, gin.H{"conversations": out})
}

// MarkConversationRead flags the peer's messages to the caller as read.
func (h *MessageHandler) MarkConversationRead(c *gin.Context) {
	peerID, err := strconv.Atoi(c.Param("peer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid peer id"})
		return
	}

	ctx := c.Request.Context()
	userID := c.GetInt("userID")

	var categoryID *int
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
			return
		}
		categoryID = &id
	}

	updated, err := h.messageRepo.MarkConversationRead(ctx, userID, peerID, categoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark conversation read"})
		return
	}
	h.unreadCache.Invalidate(ctx, userID)

	c.JSON(http.StatusOK, gin.H{"marked_read": updated})
}

// MarkMessageRead flags a single message addressed to the caller as read.
func (h *MessageHandler) MarkMessageRead(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	ctx := c.Request.Context()
	userID := c.GetInt("userID")
	if err := h.messageRepo.MarkMessageRead(ctx, messageID, userID); err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark message read"})
		return
	}
	h.unreadCache.Invalidate(ctx, userID)

	c.Status(http.StatusNoContent)
}

// UnreadCount returns the caller's unread total, via the cache when warm.
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetInt("userID")

	if count, ok := h.unreadCache.Get(ctx, userID); ok {
		c.JSON(http.StatusOK, gin.H{"unread": count, "cached": true})
		return
	}

	count, err := h.messageRepo.UnreadCount(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count unread messages"})
		return
	}
	h.unreadCache.Set(ctx, userID, count)

	c.JSON(http.StatusOK, gin.H{"unread": count, "cached": false})
}
