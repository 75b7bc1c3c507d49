// Package delivery emails rendered shipping instructions.
//
// A Dispatcher composes one message per submission with go-mail: the
// configured display name and SMTP user as sender, a fixed subject, the
// document HTML as body and the PDF attached as shipping-instruction.pdf.
// SMTPSender opens an authenticated connection to the relay (STARTTLS by
// default) for each message. Failures are returned as *DeliveryError and
// are not retried.
package delivery
