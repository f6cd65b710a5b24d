package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/quillforge/quill/pkg/domain/interfaces"
	"github.com/quillforge/quill/pkg/domain/model"
	"github.com/quillforge/quill/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	conversationsCollection = "conversations"
	messagesCollection      = "messages"
)

type attachmentDoc struct {
	ID        string
	Name      string
	MimeType  string
	SizeBytes int64
	Handle    string
}

type messageDoc struct {
	ID          string
	Author      string
	Text        string
	Attachments []attachmentDoc
	Seq         int64
	CreatedAt   time.Time
}

// conversationDoc holds the per-session message counter used to assign Seq
type conversationDoc struct {
	MessageCount int64
}

type conversationRepository struct {
	client *firestore.Client
}

var _ interfaces.ConversationRepository = &conversationRepository{}

func newConversationRepository(client *firestore.Client) *conversationRepository {
	return &conversationRepository{client: client}
}

func (r *conversationRepository) convRef(sessionID types.SessionID) *firestore.DocumentRef {
	return r.client.Collection(conversationsCollection).Doc(sessionID.String())
}

func (r *conversationRepository) messages(sessionID types.SessionID) *firestore.CollectionRef {
	return r.convRef(sessionID).Collection(messagesCollection)
}

func (r *conversationRepository) Append(ctx context.Context, sessionID types.SessionID, msg *model.Message) (*model.Message, error) {
	if msg == nil {
		return nil, goerr.New("message is nil")
	}

	var seq int64
	convRef := r.convRef(sessionID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var conv conversationDoc
		snap, err := tx.Get(convRef)
		switch {
		case err == nil:
			if err := snap.DataTo(&conv); err != nil {
				return goerr.Wrap(err, "failed to unmarshal conversation counter")
			}
		case status.Code(err) == codes.NotFound:
			// First message of the session
		default:
			return goerr.Wrap(err, "failed to get conversation counter")
		}

		seq = conv.MessageCount + 1
		if err := tx.Set(convRef, &conversationDoc{MessageCount: seq}); err != nil {
			return goerr.Wrap(err, "failed to update conversation counter")
		}

		stored := msg.WithSeq(seq)
		msgRef := r.messages(sessionID).Doc(stored.ID().String())
		if err := tx.Set(msgRef, toMessageDoc(stored)); err != nil {
			return goerr.Wrap(err, "failed to save message")
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to append message",
			goerr.V("session_id", sessionID),
			goerr.V("message_id", msg.ID()))
	}

	return msg.WithSeq(seq), nil
}

func (r *conversationRepository) List(ctx context.Context, sessionID types.SessionID) ([]*model.Message, error) {
	iter := r.messages(sessionID).OrderBy("Seq", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var messages []*model.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate messages",
				goerr.V("session_id", sessionID))
		}

		var data messageDoc
		if err := doc.DataTo(&data); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal message",
				goerr.V("doc_id", doc.Ref.ID))
		}
		messages = append(messages, fromMessageDoc(&data))
	}

	return messages, nil
}

func (r *conversationRepository) Clear(ctx context.Context, sessionID types.SessionID) error {
	iter := r.messages(sessionID).Documents(ctx)
	bulkWriter := r.client.BulkWriter(ctx)

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			iter.Stop()
			bulkWriter.End()
			return goerr.Wrap(err, "failed to iterate messages for deletion",
				goerr.V("session_id", sessionID))
		}
		if _, err := bulkWriter.Delete(doc.Ref); err != nil {
			iter.Stop()
			bulkWriter.End()
			return goerr.Wrap(err, "failed to delete message",
				goerr.V("session_id", sessionID))
		}
	}
	iter.Stop()
	bulkWriter.End()

	if _, err := r.convRef(sessionID).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete conversation counter",
			goerr.V("session_id", sessionID))
	}
	return nil
}

func toMessageDoc(msg *model.Message) *messageDoc {
	var attachments []attachmentDoc
	for _, a := range msg.Attachments() {
		attachments = append(attachments, attachmentDoc{
			ID:        a.ID().String(),
			Name:      a.Name(),
			MimeType:  a.MimeType(),
			SizeBytes: a.SizeBytes(),
			Handle:    a.Handle(),
		})
	}
	return &messageDoc{
		ID:          msg.ID().String(),
		Author:      msg.Author().String(),
		Text:        msg.Text(),
		Attachments: attachments,
		Seq:         msg.Seq(),
		CreatedAt:   msg.CreatedAt(),
	}
}

func fromMessageDoc(doc *messageDoc) *model.Message {
	var attachments []model.Attachment
	for _, a := range doc.Attachments {
		attachments = append(attachments, model.NewAttachmentFromData(
			types.AttachmentID(a.ID), a.Name, a.MimeType, a.SizeBytes, a.Handle,
		))
	}
	return model.NewMessageFromData(
		types.MessageID(doc.ID),
		types.MessageAuthor(doc.Author),
		doc.Text,
		attachments,
		doc.Seq,
		doc.CreatedAt,
	)
}
